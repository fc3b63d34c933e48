package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrix/agrix-server/internal/domain"
	domainerrors "github.com/agrix/agrix-server/internal/errors"
	"github.com/agrix/agrix-server/internal/search"
	"github.com/agrix/agrix-server/internal/store"
	"github.com/agrix/agrix-server/internal/store/sqlite"
)

// countingRecorder is a Recorder that remembers what it saw.
type countingRecorder struct {
	mu           sync.Mutex
	created      map[string]int
	notFound     map[string]int
	associations []bool
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{created: map[string]int{}, notFound: map[string]int{}}
}

func (r *countingRecorder) EntityCreated(entity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created[entity]++
}

func (r *countingRecorder) FertilizerAssociated(added bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.associations = append(r.associations, added)
}

func (r *countingRecorder) NotFound(entity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notFound[entity]++
}

type testServices struct {
	store       store.Store
	farms       *FarmService
	crops       *CropService
	fertilizers *FertilizerService
	search      *SearchService
	recorder    *countingRecorder
}

// setupTestServices wires all managers to a temporary sqlite store and an
// in-memory search index.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.NewSearchIndex(search.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	searchService := NewSearchService(index, st, nil)
	recorder := newCountingRecorder()

	return &testServices{
		store:       st,
		farms:       NewFarmService(st, searchService, recorder, nil),
		crops:       NewCropService(st, searchService, recorder, nil),
		fertilizers: NewFertilizerService(st, searchService, recorder, nil),
		search:      searchService,
		recorder:    recorder,
	}
}

func cornRequest() CreateCropRequest {
	return CreateCropRequest{
		Name:        "Corn",
		PlantedArea: 10.0,
		PlantedDate: domain.MustParseDate("2024-01-01"),
		HarvestDate: domain.MustParseDate("2024-06-01"),
	}
}

func TestFarmService_CreateAndGet(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	farm, err := svc.farms.CreateFarm(ctx, CreateFarmRequest{Name: "Green Acres", Size: 100.0})
	require.NoError(t, err)
	assert.Equal(t, int64(1), farm.ID)
	assert.Equal(t, "Green Acres", farm.Name)
	assert.Equal(t, 100.0, farm.Size)

	got, err := svc.farms.GetFarm(ctx, farm.ID)
	require.NoError(t, err)
	assert.Equal(t, farm, got)

	farms, err := svc.farms.ListFarms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []*domain.Farm{farm}, farms)

	assert.Equal(t, 1, svc.recorder.created[domainerrors.EntityFarm])
}

func TestFarmService_GetFarm_NotFound(t *testing.T) {
	svc := setupTestServices(t)

	_, err := svc.farms.GetFarm(context.Background(), 99)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrFarmNotFound)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.NotErrorIs(t, err, domainerrors.ErrCropNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound, "store cause stays reachable")

	assert.Equal(t, 1, svc.recorder.notFound[domainerrors.EntityFarm])
}

func TestFarmService_CreateFarmCrop(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	farm, err := svc.farms.CreateFarm(ctx, CreateFarmRequest{Name: "Green Acres", Size: 100.0})
	require.NoError(t, err)

	crop, err := svc.farms.CreateFarmCrop(ctx, farm.ID, cornRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1), crop.ID)
	assert.Equal(t, farm.ID, crop.FarmID)
	assert.Equal(t, domain.MustParseDate("2024-06-01"), crop.HarvestDate)

	crops, err := svc.farms.ListFarmCrops(ctx, farm.ID)
	require.NoError(t, err)
	require.Len(t, crops, 1)
	assert.Equal(t, crop.ID, crops[0].ID)
}

func TestFarmService_CreateFarmCrop_FarmNotFound(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	_, err := svc.farms.CreateFarmCrop(ctx, 7, cornRequest())
	assert.ErrorIs(t, err, domainerrors.ErrFarmNotFound)

	crops, err := svc.crops.ListCrops(ctx)
	require.NoError(t, err)
	assert.Empty(t, crops, "no crop is written for a missing farm")
}

func TestFarmService_ListFarmCrops_OnlyOwnCrops(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	a, err := svc.farms.CreateFarm(ctx, CreateFarmRequest{Name: "A"})
	require.NoError(t, err)
	b, err := svc.farms.CreateFarm(ctx, CreateFarmRequest{Name: "B"})
	require.NoError(t, err)

	c1, err := svc.farms.CreateFarmCrop(ctx, a.ID, CreateCropRequest{Name: "Milho"})
	require.NoError(t, err)
	_, err = svc.farms.CreateFarmCrop(ctx, b.ID, CreateCropRequest{Name: "Arroz"})
	require.NoError(t, err)
	c3, err := svc.farms.CreateFarmCrop(ctx, a.ID, CreateCropRequest{Name: "Trigo"})
	require.NoError(t, err)

	crops, err := svc.farms.ListFarmCrops(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, crops, 2)
	assert.Equal(t, c1.ID, crops[0].ID)
	assert.Equal(t, c3.ID, crops[1].ID)

	_, err = svc.farms.ListFarmCrops(ctx, 404)
	assert.ErrorIs(t, err, domainerrors.ErrFarmNotFound)
}

func TestCropService_FindByHarvestDate(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	farm, err := svc.farms.CreateFarm(ctx, CreateFarmRequest{Name: "Green Acres", Size: 100.0})
	require.NoError(t, err)
	corn, err := svc.farms.CreateFarmCrop(ctx, farm.ID, cornRequest())
	require.NoError(t, err)

	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{"covers harvest", "2024-05-01", "2024-07-01", 1},
		{"after harvest", "2024-07-01", "2024-12-01", 0},
		{"exact start", "2024-06-01", "2024-06-30", 1},
		{"exact end", "2024-01-01", "2024-06-01", 1},
		{"reversed", "2024-07-01", "2024-05-01", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crops, err := svc.crops.FindByHarvestDate(ctx, domain.MustParseDate(tt.start), domain.MustParseDate(tt.end))
			require.NoError(t, err)
			require.Len(t, crops, tt.want)
			if tt.want == 1 {
				assert.Equal(t, corn.ID, crops[0].ID)
			}
		})
	}
}

func TestCropService_GetCrop_NotFound(t *testing.T) {
	svc := setupTestServices(t)

	_, err := svc.crops.GetCrop(context.Background(), 1)
	assert.ErrorIs(t, err, domainerrors.ErrCropNotFound)
}

func TestCropService_AssociateFertilizer(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	farm, err := svc.farms.CreateFarm(ctx, CreateFarmRequest{Name: "Green Acres", Size: 100.0})
	require.NoError(t, err)
	crop, err := svc.farms.CreateFarmCrop(ctx, farm.ID, cornRequest())
	require.NoError(t, err)
	urea, err := svc.fertilizers.CreateFertilizer(ctx, CreateFertilizerRequest{Name: "Urea"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), urea.ID)

	msg, err := svc.crops.AssociateFertilizer(ctx, crop.ID, urea.ID)
	require.NoError(t, err)
	assert.Equal(t, AssociationMessage, msg)

	fertilizers, err := svc.crops.ListFertilizers(ctx, crop.ID)
	require.NoError(t, err)
	assert.Equal(t, []*domain.Fertilizer{urea}, fertilizers)
}

func TestCropService_AssociateFertilizer_Twice(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	farm, err := svc.farms.CreateFarm(ctx, CreateFarmRequest{Name: "F"})
	require.NoError(t, err)
	crop, err := svc.farms.CreateFarmCrop(ctx, farm.ID, cornRequest())
	require.NoError(t, err)
	f, err := svc.fertilizers.CreateFertilizer(ctx, CreateFertilizerRequest{Name: "Compostagem"})
	require.NoError(t, err)

	for range 2 {
		msg, err := svc.crops.AssociateFertilizer(ctx, crop.ID, f.ID)
		require.NoError(t, err)
		assert.Equal(t, AssociationMessage, msg)
	}

	fertilizers, err := svc.crops.ListFertilizers(ctx, crop.ID)
	require.NoError(t, err)
	assert.Len(t, fertilizers, 1)
	assert.Equal(t, []bool{true, false}, svc.recorder.associations)
}

func TestCropService_AssociateFertilizer_KeepsOrder(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	farm, err := svc.farms.CreateFarm(ctx, CreateFarmRequest{Name: "F"})
	require.NoError(t, err)
	crop, err := svc.farms.CreateFarmCrop(ctx, farm.ID, cornRequest())
	require.NoError(t, err)
	f1, err := svc.fertilizers.CreateFertilizer(ctx, CreateFertilizerRequest{Name: "Primeiro"})
	require.NoError(t, err)
	f2, err := svc.fertilizers.CreateFertilizer(ctx, CreateFertilizerRequest{Name: "Segundo"})
	require.NoError(t, err)

	_, err = svc.crops.AssociateFertilizer(ctx, crop.ID, f2.ID)
	require.NoError(t, err)
	_, err = svc.crops.AssociateFertilizer(ctx, crop.ID, f1.ID)
	require.NoError(t, err)

	fertilizers, err := svc.crops.ListFertilizers(ctx, crop.ID)
	require.NoError(t, err)
	require.Len(t, fertilizers, 2)
	assert.Equal(t, f2.ID, fertilizers[0].ID)
	assert.Equal(t, f1.ID, fertilizers[1].ID)
}

func TestCropService_AssociateFertilizer_NotFound(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	farm, err := svc.farms.CreateFarm(ctx, CreateFarmRequest{Name: "F"})
	require.NoError(t, err)
	crop, err := svc.farms.CreateFarmCrop(ctx, farm.ID, cornRequest())
	require.NoError(t, err)
	f, err := svc.fertilizers.CreateFertilizer(ctx, CreateFertilizerRequest{Name: "Urea"})
	require.NoError(t, err)

	_, err = svc.crops.AssociateFertilizer(ctx, 999, f.ID)
	assert.ErrorIs(t, err, domainerrors.ErrCropNotFound)

	_, err = svc.crops.AssociateFertilizer(ctx, crop.ID, 999)
	assert.ErrorIs(t, err, domainerrors.ErrFertilizerNotFound)

	// Both missing: the crop is checked first.
	_, err = svc.crops.AssociateFertilizer(ctx, 998, 999)
	assert.ErrorIs(t, err, domainerrors.ErrCropNotFound)

	fertilizers, err := svc.crops.ListFertilizers(ctx, crop.ID)
	require.NoError(t, err)
	assert.Empty(t, fertilizers)
}

func TestCropService_ListFertilizers_CropNotFound(t *testing.T) {
	svc := setupTestServices(t)

	_, err := svc.crops.ListFertilizers(context.Background(), 5)
	assert.ErrorIs(t, err, domainerrors.ErrCropNotFound)
}

func TestFertilizerService(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	created, err := svc.fertilizers.CreateFertilizer(ctx, CreateFertilizerRequest{
		Name:        "Húmus",
		Brand:       "Terra Viva",
		Composition: "Matéria orgânica",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	got, err := svc.fertilizers.GetFertilizer(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	all, err := svc.fertilizers.ListFertilizers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []*domain.Fertilizer{created}, all)

	_, err = svc.fertilizers.GetFertilizer(ctx, 2)
	assert.ErrorIs(t, err, domainerrors.ErrFertilizerNotFound)
}

func TestManagers_NilCollaborators(t *testing.T) {
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	farms := NewFarmService(st, nil, nil, nil)
	_, err = farms.CreateFarm(context.Background(), CreateFarmRequest{Name: "Sem índice"})
	assert.NoError(t, err)
	_, err = farms.GetFarm(context.Background(), 42)
	assert.ErrorIs(t, err, domainerrors.ErrFarmNotFound)
}

func TestSearchService_IndexesOnCreate(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	farm, err := svc.farms.CreateFarm(ctx, CreateFarmRequest{Name: "Green Acres"})
	require.NoError(t, err)
	_, err = svc.farms.CreateFarmCrop(ctx, farm.ID, cornRequest())
	require.NoError(t, err)

	result, err := svc.search.Search(ctx, search.SearchParams{Query: "corn", Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, search.DocTypeCrop, result.Hits[0].Type)
}

func TestSearchService_Reindex(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	// Written straight to the store, bypassing the managers.
	require.NoError(t, svc.store.SaveFarm(ctx, &domain.Farm{Name: "Fazenda Oculta"}))
	require.NoError(t, svc.store.SaveFertilizer(ctx, &domain.Fertilizer{Name: "Calcário"}))

	count, err := svc.search.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	require.NoError(t, svc.search.Reindex(ctx))

	count, err = svc.search.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}
