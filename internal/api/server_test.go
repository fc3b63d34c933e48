package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrix/agrix-server/internal/metrics"
	"github.com/agrix/agrix-server/internal/ratelimit"
	"github.com/agrix/agrix-server/internal/search"
	"github.com/agrix/agrix-server/internal/service"
	"github.com/agrix/agrix-server/internal/store/sqlite"
)

type testServer struct {
	server  *Server
	api     humatest.TestAPI
	metrics *metrics.Metrics
}

type testOptions struct {
	rps           float64
	burst         int
	disableSearch bool
}

// setupTestServer wires a server over a temporary sqlite store and an
// in-memory search index.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWith(t, testOptions{rps: 1000, burst: 1000})
}

func setupTestServerWith(t *testing.T, opts testOptions) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	m := metrics.New()

	var (
		indexer       service.Indexer
		searchService *service.SearchService
	)
	if !opts.disableSearch {
		index, err := search.NewSearchIndex(search.Options{Logger: logger})
		require.NoError(t, err)
		t.Cleanup(func() { _ = index.Close() })
		searchService = service.NewSearchService(index, st, logger)
		indexer = searchService
	}

	limiter := ratelimit.New(opts.rps, opts.burst)
	t.Cleanup(limiter.Stop)

	services := &Services{
		Farm:       service.NewFarmService(st, indexer, m, logger),
		Crop:       service.NewCropService(st, indexer, m, logger),
		Fertilizer: service.NewFertilizerService(st, indexer, m, logger),
		Search:     searchService,
	}

	server := NewServer(st, services, Options{
		Metrics:     m,
		RateLimiter: limiter,
		InstanceID:  "test-instance",
	}, logger)

	return &testServer{
		server:  server,
		api:     humatest.Wrap(t, server.API()),
		metrics: m,
	}
}

// testEnvelope mirrors response.Envelope with a typed data field.
type testEnvelope[T any] struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decode[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	assert.Equal(t, 1, env.V)
	return env
}

func requireError(t *testing.T, body []byte, code string) {
	t.Helper()
	env := decode[json.RawMessage](t, body)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error, "body: %s", body)
	assert.Equal(t, code, env.Error.Code)
}

func (ts *testServer) createFarm(t *testing.T, name string, size float64) FarmResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/farms", map[string]any{"name": name, "size": size})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[FarmResponse](t, resp.Body.Bytes()).Data
}

func (ts *testServer) createCrop(t *testing.T, farmID int64, body map[string]any) CropResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/farms/"+itoa(farmID)+"/crops", body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[CropResponse](t, resp.Body.Bytes()).Data
}

func (ts *testServer) createFertilizer(t *testing.T, name, brand, composition string) FertilizerResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/fertilizers", map[string]any{
		"name":        name,
		"brand":       brand,
		"composition": composition,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[FertilizerResponse](t, resp.Body.Bytes()).Data
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func TestServer_UnknownRouteUsesEnvelope(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/tractors")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	requireError(t, resp.Body.Bytes(), "NOT_FOUND")
}

func TestServer_RequestIDHeader(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/farms")
	assert.Regexp(t, `^req-`, resp.Header().Get("X-Request-Id"))

	resp = ts.api.Get("/api/v1/farms", "X-Request-Id: abc-123")
	assert.Equal(t, "abc-123", resp.Header().Get("X-Request-Id"))
}

func TestServer_RecoversPanics(t *testing.T) {
	ts := setupTestServer(t)
	h := ts.server.recoverPanics(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/farms", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	requireError(t, w.Body.Bytes(), "INTERNAL")
	assert.NotContains(t, w.Body.String(), "boom")

	abort := ts.server.recoverPanics(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		abort.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestServer_RateLimitsPosts(t *testing.T) {
	ts := setupTestServerWith(t, testOptions{rps: 0.001, burst: 2})

	for range 2 {
		resp := ts.api.Post("/api/v1/farms", map[string]any{"name": "Fazenda", "size": 1.0})
		require.Equal(t, http.StatusCreated, resp.Code)
	}

	resp := ts.api.Post("/api/v1/farms", map[string]any{"name": "Fazenda", "size": 1.0})
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	requireError(t, resp.Body.Bytes(), "RATE_LIMITED")

	// Reads are never limited.
	resp = ts.api.Get("/api/v1/farms")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestServer_Metrics(t *testing.T) {
	ts := setupTestServer(t)
	ts.createFarm(t, "Fazenda", 10)
	ts.api.Get("/api/v1/farms/99")

	resp := ts.api.Get("/metrics")

	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, `agrix_entities_created_total{entity="farm"} 1`)
	assert.Contains(t, body, `agrix_lookups_not_found_total{entity="farm"} 1`)
	assert.Contains(t, body, `route="/api/v1/farms/{id}"`)
}

func TestServer_OpenAPI(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/openapi.json")

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "associateFertilizer")
}
