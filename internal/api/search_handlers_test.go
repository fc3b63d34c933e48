package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrix/agrix-server/internal/search"
)

func TestSearch_FindsAcrossKinds(t *testing.T) {
	ts := setupTestServer(t)
	seedCorn(t, ts)
	ts.createFertilizer(t, "Urea", "Yara", "46-0-0")

	resp := ts.api.Get("/api/v1/search?q=corn")

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	result := decode[search.SearchResult](t, resp.Body.Bytes()).Data
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, search.DocTypeCrop, result.Hits[0].Type)
	assert.Equal(t, "Corn", result.Hits[0].Name)
}

func TestSearch_TypeFilter(t *testing.T) {
	ts := setupTestServer(t)
	seedCorn(t, ts)
	ts.createFertilizer(t, "Urea", "Yara", "46-0-0")

	resp := ts.api.Get("/api/v1/search?q=yara&type=farm,crop")

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Empty(t, decode[search.SearchResult](t, resp.Body.Bytes()).Data.Hits)
}

func TestSearch_Validation(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name  string
		query string
	}{
		{"missing query", ""},
		{"blank query", "q=%20%20"},
		{"unknown type", "q=corn&type=tractor"},
		{"limit too large", "q=corn&limit=500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get("/api/v1/search?" + tt.query)

			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
			requireError(t, resp.Body.Bytes(), "VALIDATION")
		})
	}
}

func TestSearch_Disabled(t *testing.T) {
	ts := setupTestServerWith(t, testOptions{rps: 1000, burst: 1000, disableSearch: true})

	resp := ts.api.Get("/api/v1/search?q=corn")

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	requireError(t, resp.Body.Bytes(), "INTERNAL")

	// Creation still works without an index.
	ts.createFarm(t, "Green Acres", 100)
}
