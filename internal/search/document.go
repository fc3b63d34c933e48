// Package search provides full-text search over farms, crops and
// fertilizers using Bleve. All three kinds share one index and are told
// apart by the type field.
package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agrix/agrix-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeFarm       DocType = "farm"
	DocTypeCrop       DocType = "crop"
	DocTypeFertilizer DocType = "fertilizer"
)

// DocTypes lists every indexed document type.
var DocTypes = []DocType{DocTypeFarm, DocTypeCrop, DocTypeFertilizer}

// ParseDocType validates a type filter value.
func ParseDocType(s string) (DocType, error) {
	for _, t := range DocTypes {
		if string(t) == strings.ToLower(s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown document type %q", s)
}

// SearchDocument is the unified document structure for the Bleve index.
type SearchDocument struct {
	ID       string  `json:"id"`        // "<type>:<entity id>", unique across kinds
	Type     DocType `json:"type"`      // Discriminator for result grouping
	EntityID int64   `json:"entity_id"` // Store-assigned id of the record

	Name string `json:"name"`

	// Fertilizer fields
	Brand       string `json:"brand,omitempty"`
	Composition string `json:"composition,omitempty"`

	// Crop fields
	FarmID      int64  `json:"farm_id,omitempty"`
	HarvestDate string `json:"harvest_date,omitempty"`
}

// DocumentID builds the index key for an entity.
func DocumentID(t DocType, id int64) string {
	return string(t) + ":" + strconv.FormatInt(id, 10)
}

// ToMap converts the document to a map whose keys match the index mapping.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":        d.ID,
		"type":      string(d.Type),
		"entity_id": d.EntityID,
		"name":      d.Name,
	}

	if d.Brand != "" {
		m["brand"] = d.Brand
	}
	if d.Composition != "" {
		m["composition"] = d.Composition
	}
	if d.FarmID > 0 {
		m["farm_id"] = d.FarmID
	}
	if d.HarvestDate != "" {
		m["harvest_date"] = d.HarvestDate
	}

	return m
}

// FarmToSearchDocument converts a domain Farm to a SearchDocument.
func FarmToSearchDocument(f *domain.Farm) *SearchDocument {
	return &SearchDocument{
		ID:       DocumentID(DocTypeFarm, f.ID),
		Type:     DocTypeFarm,
		EntityID: f.ID,
		Name:     f.Name,
	}
}

// CropToSearchDocument converts a domain Crop to a SearchDocument.
func CropToSearchDocument(c *domain.Crop) *SearchDocument {
	return &SearchDocument{
		ID:          DocumentID(DocTypeCrop, c.ID),
		Type:        DocTypeCrop,
		EntityID:    c.ID,
		Name:        c.Name,
		FarmID:      c.FarmID,
		HarvestDate: c.HarvestDate.String(),
	}
}

// FertilizerToSearchDocument converts a domain Fertilizer to a SearchDocument.
func FertilizerToSearchDocument(f *domain.Fertilizer) *SearchDocument {
	return &SearchDocument{
		ID:          DocumentID(DocTypeFertilizer, f.ID),
		Type:        DocTypeFertilizer,
		EntityID:    f.ID,
		Name:        f.Name,
		Brand:       f.Brand,
		Composition: f.Composition,
	}
}
