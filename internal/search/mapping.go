package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for search documents.
//
// Names and compositions use the standard analyzer (no stemming, since
// names are often not English). Brands use the simple analyzer. Type and
// id are keywords for exact filtering.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields ---

	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = standard.Name
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	brandFieldMapping := bleve.NewTextFieldMapping()
	brandFieldMapping.Analyzer = simple.Name
	brandFieldMapping.Store = true
	brandFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("brand", brandFieldMapping)

	compositionFieldMapping := bleve.NewTextFieldMapping()
	compositionFieldMapping.Analyzer = standard.Name
	compositionFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("composition", compositionFieldMapping)

	// --- Keyword fields ---

	typeFieldMapping := bleve.NewTextFieldMapping()
	typeFieldMapping.Analyzer = keyword.Name
	typeFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("type", typeFieldMapping)

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	harvestFieldMapping := bleve.NewTextFieldMapping()
	harvestFieldMapping.Analyzer = keyword.Name
	harvestFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("harvest_date", harvestFieldMapping)

	// --- Numeric fields ---

	entityIDFieldMapping := bleve.NewNumericFieldMapping()
	entityIDFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("entity_id", entityIDFieldMapping)

	farmIDFieldMapping := bleve.NewNumericFieldMapping()
	farmIDFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("farm_id", farmIDFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
