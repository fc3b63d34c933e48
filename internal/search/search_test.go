package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrix/agrix-server/internal/domain"
)

func setupTestIndex(t *testing.T) *SearchIndex {
	t.Helper()

	index, err := NewSearchIndex(Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return index
}

func seedIndex(t *testing.T, index *SearchIndex) {
	t.Helper()

	docs := []*SearchDocument{
		FarmToSearchDocument(&domain.Farm{ID: 1, Name: "Green Acres", Size: 100}),
		FarmToSearchDocument(&domain.Farm{ID: 2, Name: "Fazenda Sol Nascente", Size: 40}),
		CropToSearchDocument(&domain.Crop{ID: 1, Name: "Corn", FarmID: 1, HarvestDate: domain.MustParseDate("2024-06-01")}),
		CropToSearchDocument(&domain.Crop{ID: 2, Name: "Green Beans", FarmID: 2}),
		FertilizerToSearchDocument(&domain.Fertilizer{ID: 1, Name: "Urea", Brand: "Yara", Composition: "46% nitrogen"}),
		FertilizerToSearchDocument(&domain.Fertilizer{ID: 2, Name: "Húmus", Brand: "Terra Viva", Composition: "organic matter"}),
	}
	require.NoError(t, index.Rebuild(docs))
}

func TestNewSearchIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_IndexDocument_Replaces(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexDocument(FarmToSearchDocument(&domain.Farm{ID: 1, Name: "Old"})))
	require.NoError(t, index.IndexDocument(FarmToSearchDocument(&domain.Farm{ID: 1, Name: "New"})))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	result, err := index.Search(context.Background(), SearchParams{Query: "new"})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "New", result.Hits[0].Name)
}

func TestSearchIndex_SameIDDifferentTypes(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexDocument(FarmToSearchDocument(&domain.Farm{ID: 1, Name: "One"})))
	require.NoError(t, index.IndexDocument(CropToSearchDocument(&domain.Crop{ID: 1, Name: "One", FarmID: 1})))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestSearch_ByName(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	result, err := index.Search(context.Background(), SearchParams{Query: "corn", Limit: 10})
	require.NoError(t, err)

	require.NotEmpty(t, result.Hits)
	top := result.Hits[0]
	assert.Equal(t, DocTypeCrop, top.Type)
	assert.Equal(t, int64(1), top.ID)
	assert.Equal(t, "Corn", top.Name)
	assert.Equal(t, int64(1), top.FarmID)
	assert.Equal(t, "2024-06-01", top.HarvestDate)
}

func TestSearch_AcrossTypes(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	result, err := index.Search(context.Background(), SearchParams{Query: "green", Limit: 10, IncludeFacets: true})
	require.NoError(t, err)

	types := map[DocType]bool{}
	for _, hit := range result.Hits {
		types[hit.Type] = true
	}
	assert.True(t, types[DocTypeFarm])
	assert.True(t, types[DocTypeCrop])
	assert.NotEmpty(t, result.Facets)
}

func TestSearch_TypeFilter(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	result, err := index.Search(context.Background(), SearchParams{
		Query: "green",
		Types: []DocType{DocTypeFarm},
		Limit: 10,
	})
	require.NoError(t, err)

	require.Len(t, result.Hits, 1)
	assert.Equal(t, DocTypeFarm, result.Hits[0].Type)
	assert.Equal(t, "Green Acres", result.Hits[0].Name)
}

func TestSearch_ByBrandAndComposition(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	result, err := index.Search(context.Background(), SearchParams{Query: "yara", Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "Urea", result.Hits[0].Name)
	assert.Equal(t, "Yara", result.Hits[0].Brand)

	result, err = index.Search(context.Background(), SearchParams{Query: "nitrogen", Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, DocTypeFertilizer, result.Hits[0].Type)
}

func TestSearch_Fuzzy(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	result, err := index.Search(context.Background(), SearchParams{Query: "ureia", Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "Urea", result.Hits[0].Name)
}

func TestSearch_EmptyQueryMatchesAll(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	result, err := index.Search(context.Background(), SearchParams{Types: []DocType{DocTypeFertilizer}, SortBy: "name"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
}

func TestSearchIndex_Rebuild(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	err := index.Rebuild([]*SearchDocument{
		FertilizerToSearchDocument(&domain.Fertilizer{ID: 9, Name: "Calcário"}),
	})
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	result, err := index.Search(context.Background(), SearchParams{Query: "corn"})
	require.NoError(t, err)
	assert.Empty(t, result.Hits)
}

func TestParseDocType(t *testing.T) {
	dt, err := ParseDocType("Crop")
	require.NoError(t, err)
	assert.Equal(t, DocTypeCrop, dt)

	_, err = ParseDocType("tractor")
	assert.Error(t, err)
}
