package domain

// Fertilizer is a product that can be applied to many crops.
type Fertilizer struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Composition string `json:"composition"`
}
