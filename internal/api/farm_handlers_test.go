package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFarm(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/farms", map[string]any{"name": "Green Acres", "size": 100.0})

	require.Equal(t, http.StatusCreated, resp.Code)
	env := decode[FarmResponse](t, resp.Body.Bytes())
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
	assert.Equal(t, FarmResponse{ID: 1, Name: "Green Acres", Size: 100}, env.Data)
}

func TestCreateFarm_IgnoresClientID(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/farms", map[string]any{"id": 42, "name": "Fazenda Boa", "size": 5.0})

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, int64(1), decode[FarmResponse](t, resp.Body.Bytes()).Data.ID)
}

func TestGetFarm(t *testing.T) {
	ts := setupTestServer(t)
	created := ts.createFarm(t, "Green Acres", 100)

	resp := ts.api.Get("/api/v1/farms/" + itoa(created.ID))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, created, decode[FarmResponse](t, resp.Body.Bytes()).Data)
}

func TestGetFarm_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/farms/7")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	env := decode[any](t, resp.Body.Bytes())
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.Equal(t, "farm not found", env.Error.Message)
}

func TestGetFarm_NonNumericID(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/farms/abc")

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	requireError(t, resp.Body.Bytes(), "VALIDATION")
}

func TestListFarms(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/farms")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decode[[]FarmResponse](t, resp.Body.Bytes()).Data)

	ts.createFarm(t, "Green Acres", 100)
	ts.createFarm(t, "Fazenda Boa", 5)

	resp = ts.api.Get("/api/v1/farms")
	farms := decode[[]FarmResponse](t, resp.Body.Bytes()).Data
	require.Len(t, farms, 2)
	assert.Equal(t, "Green Acres", farms[0].Name)
	assert.Equal(t, "Fazenda Boa", farms[1].Name)
}

func TestCreateFarmCrop(t *testing.T) {
	ts := setupTestServer(t)
	farm := ts.createFarm(t, "Green Acres", 100)

	crop := ts.createCrop(t, farm.ID, map[string]any{
		"name":         "Corn",
		"planted_area": 10.0,
		"planted_date": "2024-01-01",
		"harvest_date": "2024-06-01",
	})

	assert.Equal(t, int64(1), crop.ID)
	assert.Equal(t, farm.ID, crop.FarmID)
	require.NotNil(t, crop.PlantedDate)
	require.NotNil(t, crop.HarvestDate)
	assert.Equal(t, "2024-01-01", *crop.PlantedDate)
	assert.Equal(t, "2024-06-01", *crop.HarvestDate)
}

func TestCreateFarmCrop_OptionalDates(t *testing.T) {
	ts := setupTestServer(t)
	farm := ts.createFarm(t, "Green Acres", 100)

	resp := ts.api.Post("/api/v1/farms/"+itoa(farm.ID)+"/crops", map[string]any{"name": "Soja", "planted_area": 3.5})

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), `"planted_date":null`)
	assert.Contains(t, resp.Body.String(), `"harvest_date":null`)
}

func TestCreateFarmCrop_FarmNotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/farms/9/crops", map[string]any{"name": "Corn"})

	assert.Equal(t, http.StatusNotFound, resp.Code)
	requireError(t, resp.Body.Bytes(), "NOT_FOUND")

	list := ts.api.Get("/api/v1/crops")
	assert.Empty(t, decode[[]CropResponse](t, list.Body.Bytes()).Data)
}

func TestCreateFarmCrop_BadDate(t *testing.T) {
	ts := setupTestServer(t)
	farm := ts.createFarm(t, "Green Acres", 100)

	resp := ts.api.Post("/api/v1/farms/"+itoa(farm.ID)+"/crops", map[string]any{
		"name":         "Corn",
		"harvest_date": "06/01/2024",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	requireError(t, resp.Body.Bytes(), "VALIDATION")
	assert.Contains(t, resp.Body.String(), "harvest_date")
}

func TestListFarmCrops(t *testing.T) {
	ts := setupTestServer(t)
	first := ts.createFarm(t, "Green Acres", 100)
	second := ts.createFarm(t, "Fazenda Boa", 5)

	corn := ts.createCrop(t, first.ID, map[string]any{"name": "Corn"})
	ts.createCrop(t, second.ID, map[string]any{"name": "Soja"})

	resp := ts.api.Get("/api/v1/farms/" + itoa(first.ID) + "/crops")

	require.Equal(t, http.StatusOK, resp.Code)
	crops := decode[[]CropResponse](t, resp.Body.Bytes()).Data
	require.Len(t, crops, 1)
	assert.Equal(t, corn.ID, crops[0].ID)
}

func TestListFarmCrops_FarmNotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/farms/3/crops")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	requireError(t, resp.Body.Bytes(), "NOT_FOUND")
}
