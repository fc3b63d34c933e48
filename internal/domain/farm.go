// Package domain holds the agricultural record types shared by every layer.
package domain

// Farm is a land unit that owns crops.
type Farm struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	Size float64 `json:"size"`
}
