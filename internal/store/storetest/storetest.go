// Package storetest is a conformance suite shared by every store.Store backend.
package storetest

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/agrix/agrix-server/internal/domain"
	"github.com/agrix/agrix-server/internal/store"
)

// Factory returns an empty store. It should register its own cleanup.
type Factory func(t *testing.T) store.Store

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(*testing.T, store.Store)
	}{
		{"Ping", testPing},
		{"FarmSequentialIDs", testFarmSequentialIDs},
		{"FarmUpsert", testFarmUpsert},
		{"FarmNotFound", testFarmNotFound},
		{"EmptyLists", testEmptyLists},
		{"CropRoundTrip", testCropRoundTrip},
		{"CropNotFound", testCropNotFound},
		{"CropsByFarm", testCropsByFarm},
		{"CropsByHarvestDate", testCropsByHarvestDate},
		{"CropFertilizerSet", testCropFertilizerSet},
		{"FertilizerRoundTrip", testFertilizerRoundTrip},
		{"FertilizersByIDs", testFertilizersByIDs},
		{"DemoScenario", testDemoScenario},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func mustSaveFarm(t *testing.T, s store.Store, name string, size float64) *domain.Farm {
	t.Helper()
	f := &domain.Farm{Name: name, Size: size}
	if err := s.SaveFarm(context.Background(), f); err != nil {
		t.Fatalf("SaveFarm(%q): %v", name, err)
	}
	return f
}

func mustSaveCrop(t *testing.T, s store.Store, farmID int64, name, harvest string) *domain.Crop {
	t.Helper()
	c := &domain.Crop{
		Name:        name,
		PlantedArea: 5.5,
		PlantedDate: domain.MustParseDate("2023-01-10"),
		HarvestDate: domain.MustParseDate(harvest),
		FarmID:      farmID,
	}
	if err := s.SaveCrop(context.Background(), c); err != nil {
		t.Fatalf("SaveCrop(%q): %v", name, err)
	}
	return c
}

func mustSaveFertilizer(t *testing.T, s store.Store, name string) *domain.Fertilizer {
	t.Helper()
	f := &domain.Fertilizer{Name: name, Brand: "Brand " + name, Composition: "N-P-K"}
	if err := s.SaveFertilizer(context.Background(), f); err != nil {
		t.Fatalf("SaveFertilizer(%q): %v", name, err)
	}
	return f
}

func cropIDs(crops []*domain.Crop) []int64 {
	ids := make([]int64, len(crops))
	for i, c := range crops {
		ids[i] = c.ID
	}
	return ids
}

func fertilizerIDs(fs []*domain.Fertilizer) []int64 {
	ids := make([]int64, len(fs))
	for i, f := range fs {
		ids[i] = f.ID
	}
	return ids
}

func testPing(t *testing.T, s store.Store) {
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func testFarmSequentialIDs(t *testing.T, s store.Store) {
	ctx := context.Background()

	a := mustSaveFarm(t, s, "Fazendinha", 5)
	b := mustSaveFarm(t, s, "Fazenda Boa", 12.5)
	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("ids: got %d, %d, want 1, 2", a.ID, b.ID)
	}

	got, err := s.GetFarm(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetFarm: %v", err)
	}
	if *got != *b {
		t.Errorf("GetFarm: got %+v, want %+v", got, b)
	}

	farms, err := s.ListFarms(ctx)
	if err != nil {
		t.Fatalf("ListFarms: %v", err)
	}
	if len(farms) != 2 || farms[0].Name != "Fazendinha" || farms[1].Name != "Fazenda Boa" {
		t.Errorf("ListFarms: got %+v", farms)
	}
}

func testFarmUpsert(t *testing.T, s store.Store) {
	ctx := context.Background()

	f := mustSaveFarm(t, s, "Old Name", 1)
	f.Name = "New Name"
	f.Size = 2
	if err := s.SaveFarm(ctx, f); err != nil {
		t.Fatalf("SaveFarm update: %v", err)
	}

	got, err := s.GetFarm(ctx, f.ID)
	if err != nil {
		t.Fatalf("GetFarm: %v", err)
	}
	if got.Name != "New Name" || got.Size != 2 {
		t.Errorf("after upsert: got %+v", got)
	}

	farms, err := s.ListFarms(ctx)
	if err != nil {
		t.Fatalf("ListFarms: %v", err)
	}
	if len(farms) != 1 {
		t.Errorf("upsert must not add a row, got %d farms", len(farms))
	}
}

func testFarmNotFound(t *testing.T, s store.Store) {
	_, err := s.GetFarm(context.Background(), 999)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("GetFarm(999): got %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), "farm 999") {
		t.Errorf("GetFarm(999): error %q does not name the record", err)
	}
}

func testEmptyLists(t *testing.T, s store.Store) {
	ctx := context.Background()

	farms, err := s.ListFarms(ctx)
	if err != nil || len(farms) != 0 {
		t.Errorf("ListFarms: got %v, %v", farms, err)
	}
	crops, err := s.ListCrops(ctx)
	if err != nil || len(crops) != 0 {
		t.Errorf("ListCrops: got %v, %v", crops, err)
	}
	fertilizers, err := s.ListFertilizers(ctx)
	if err != nil || len(fertilizers) != 0 {
		t.Errorf("ListFertilizers: got %v, %v", fertilizers, err)
	}
	byIDs, err := s.GetFertilizersByIDs(ctx, nil)
	if err != nil || len(byIDs) != 0 {
		t.Errorf("GetFertilizersByIDs(nil): got %v, %v", byIDs, err)
	}
}

func testCropRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()

	farm := mustSaveFarm(t, s, "Fazenda", 10)
	c := mustSaveCrop(t, s, farm.ID, "Soja", "2023-06-30")
	if c.ID != 1 {
		t.Fatalf("crop id: got %d, want 1", c.ID)
	}

	got, err := s.GetCrop(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCrop: %v", err)
	}
	if got.Name != c.Name || got.PlantedArea != c.PlantedArea || got.FarmID != farm.ID {
		t.Errorf("GetCrop: got %+v, want %+v", got, c)
	}
	if got.PlantedDate != c.PlantedDate || got.HarvestDate != c.HarvestDate {
		t.Errorf("dates: got %s/%s, want %s/%s", got.PlantedDate, got.HarvestDate, c.PlantedDate, c.HarvestDate)
	}
	if len(got.FertilizerIDs) != 0 {
		t.Errorf("new crop has fertilizers: %v", got.FertilizerIDs)
	}
}

func testCropNotFound(t *testing.T, s store.Store) {
	_, err := s.GetCrop(context.Background(), 42)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("GetCrop(42): got %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), "crop 42") {
		t.Errorf("GetCrop(42): error %q does not name the record", err)
	}
}

func testCropsByFarm(t *testing.T, s store.Store) {
	ctx := context.Background()

	a := mustSaveFarm(t, s, "A", 1)
	b := mustSaveFarm(t, s, "B", 1)
	c1 := mustSaveCrop(t, s, a.ID, "Milho", "2023-02-01")
	c2 := mustSaveCrop(t, s, b.ID, "Arroz", "2023-02-01")
	c3 := mustSaveCrop(t, s, a.ID, "Trigo", "2023-02-01")

	got, err := s.ListCropsByFarm(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListCropsByFarm: %v", err)
	}
	if want := []int64{c1.ID, c3.ID}; !slices.Equal(cropIDs(got), want) {
		t.Errorf("farm A crops: got %v, want %v", cropIDs(got), want)
	}

	got, err = s.ListCropsByFarm(ctx, b.ID)
	if err != nil {
		t.Fatalf("ListCropsByFarm: %v", err)
	}
	if want := []int64{c2.ID}; !slices.Equal(cropIDs(got), want) {
		t.Errorf("farm B crops: got %v, want %v", cropIDs(got), want)
	}

	got, err = s.ListCropsByFarm(ctx, 999)
	if err != nil || len(got) != 0 {
		t.Errorf("unknown farm: got %v, %v", got, err)
	}

	all, err := s.ListCrops(ctx)
	if err != nil {
		t.Fatalf("ListCrops: %v", err)
	}
	if want := []int64{c1.ID, c2.ID, c3.ID}; !slices.Equal(cropIDs(all), want) {
		t.Errorf("ListCrops: got %v, want %v", cropIDs(all), want)
	}
}

func testCropsByHarvestDate(t *testing.T, s store.Store) {
	ctx := context.Background()

	farm := mustSaveFarm(t, s, "Fazenda", 1)
	// Created out of date order on purpose.
	late := mustSaveCrop(t, s, farm.ID, "Late", "2023-12-31")
	early := mustSaveCrop(t, s, farm.ID, "Early", "2023-01-01")
	mid := mustSaveCrop(t, s, farm.ID, "Mid", "2023-06-15")

	tests := []struct {
		name       string
		start, end string
		want       []int64
	}{
		{"whole year", "2023-01-01", "2023-12-31", []int64{late.ID, early.ID, mid.ID}},
		{"start inclusive", "2023-06-15", "2023-06-30", []int64{mid.ID}},
		{"end inclusive", "2023-02-01", "2023-06-15", []int64{mid.ID}},
		{"single day", "2023-01-01", "2023-01-01", []int64{early.ID}},
		{"no match", "2024-01-01", "2024-12-31", []int64{}},
		{"reversed bounds", "2023-12-31", "2023-01-01", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListCropsByHarvestDate(ctx, domain.MustParseDate(tt.start), domain.MustParseDate(tt.end))
			if err != nil {
				t.Fatalf("ListCropsByHarvestDate: %v", err)
			}
			if !slices.Equal(cropIDs(got), tt.want) {
				t.Errorf("got %v, want %v", cropIDs(got), tt.want)
			}
		})
	}
}

func testCropFertilizerSet(t *testing.T, s store.Store) {
	ctx := context.Background()

	farm := mustSaveFarm(t, s, "Fazenda", 1)
	crop := mustSaveCrop(t, s, farm.ID, "Café", "2023-05-01")
	f1 := mustSaveFertilizer(t, s, "Compostagem")
	f2 := mustSaveFertilizer(t, s, "Húmus")
	f3 := mustSaveFertilizer(t, s, "Adubo")

	crop.FertilizerIDs = []int64{f2.ID, f1.ID}
	if err := s.SaveCrop(ctx, crop); err != nil {
		t.Fatalf("SaveCrop: %v", err)
	}

	got, err := s.GetCrop(ctx, crop.ID)
	if err != nil {
		t.Fatalf("GetCrop: %v", err)
	}
	if want := []int64{f2.ID, f1.ID}; !slices.Equal(got.FertilizerIDs, want) {
		t.Errorf("association order: got %v, want %v", got.FertilizerIDs, want)
	}

	// Saving replaces the whole set.
	got.FertilizerIDs = []int64{f3.ID}
	if err := s.SaveCrop(ctx, got); err != nil {
		t.Fatalf("SaveCrop replace: %v", err)
	}
	got, err = s.GetCrop(ctx, crop.ID)
	if err != nil {
		t.Fatalf("GetCrop: %v", err)
	}
	if want := []int64{f3.ID}; !slices.Equal(got.FertilizerIDs, want) {
		t.Errorf("after replace: got %v, want %v", got.FertilizerIDs, want)
	}

	// Lists carry associations too.
	crops, err := s.ListCrops(ctx)
	if err != nil {
		t.Fatalf("ListCrops: %v", err)
	}
	if len(crops) != 1 || !slices.Equal(crops[0].FertilizerIDs, []int64{f3.ID}) {
		t.Errorf("ListCrops associations: got %+v", crops)
	}

	// Re-saving keeps the farm and the crop count.
	byFarm, err := s.ListCropsByFarm(ctx, farm.ID)
	if err != nil {
		t.Fatalf("ListCropsByFarm: %v", err)
	}
	if len(byFarm) != 1 || byFarm[0].FarmID != farm.ID {
		t.Errorf("ListCropsByFarm after re-save: got %+v", byFarm)
	}
}

func testFertilizerRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()

	f := mustSaveFertilizer(t, s, "Nitrogenado")
	if f.ID != 1 {
		t.Fatalf("fertilizer id: got %d, want 1", f.ID)
	}

	got, err := s.GetFertilizer(ctx, f.ID)
	if err != nil {
		t.Fatalf("GetFertilizer: %v", err)
	}
	if *got != *f {
		t.Errorf("GetFertilizer: got %+v, want %+v", got, f)
	}

	_, err = s.GetFertilizer(ctx, 77)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetFertilizer(77): got %v, want ErrNotFound", err)
	} else if !strings.Contains(err.Error(), "fertilizer 77") {
		t.Errorf("GetFertilizer(77): error %q does not name the record", err)
	}
}

func testFertilizersByIDs(t *testing.T, s store.Store) {
	ctx := context.Background()

	f1 := mustSaveFertilizer(t, s, "A")
	f2 := mustSaveFertilizer(t, s, "B")
	f3 := mustSaveFertilizer(t, s, "C")

	got, err := s.GetFertilizersByIDs(ctx, []int64{f3.ID, 500, f1.ID})
	if err != nil {
		t.Fatalf("GetFertilizersByIDs: %v", err)
	}
	if want := []int64{f3.ID, f1.ID}; !slices.Equal(fertilizerIDs(got), want) {
		t.Errorf("got %v, want %v", fertilizerIDs(got), want)
	}

	all, err := s.ListFertilizers(ctx)
	if err != nil {
		t.Fatalf("ListFertilizers: %v", err)
	}
	if want := []int64{f1.ID, f2.ID, f3.ID}; !slices.Equal(fertilizerIDs(all), want) {
		t.Errorf("ListFertilizers: got %v, want %v", fertilizerIDs(all), want)
	}
}

// testDemoScenario walks the Green Acres data set end to end.
func testDemoScenario(t *testing.T, s store.Store) {
	ctx := context.Background()

	farm := mustSaveFarm(t, s, "Green Acres", 100.0)
	if farm.ID != 1 {
		t.Fatalf("farm id: got %d, want 1", farm.ID)
	}

	corn := &domain.Crop{
		Name:        "Corn",
		PlantedArea: 10.0,
		PlantedDate: domain.MustParseDate("2024-01-01"),
		HarvestDate: domain.MustParseDate("2024-06-01"),
		FarmID:      farm.ID,
	}
	if err := s.SaveCrop(ctx, corn); err != nil {
		t.Fatalf("SaveCrop: %v", err)
	}
	if corn.ID != 1 {
		t.Fatalf("crop id: got %d, want 1", corn.ID)
	}

	inRange, err := s.ListCropsByHarvestDate(ctx, domain.MustParseDate("2024-05-01"), domain.MustParseDate("2024-07-01"))
	if err != nil || !slices.Equal(cropIDs(inRange), []int64{1}) {
		t.Errorf("harvest 2024-05-01..2024-07-01: got %v, %v", cropIDs(inRange), err)
	}
	outOfRange, err := s.ListCropsByHarvestDate(ctx, domain.MustParseDate("2024-07-01"), domain.MustParseDate("2024-12-01"))
	if err != nil || len(outOfRange) != 0 {
		t.Errorf("harvest 2024-07-01..2024-12-01: got %v, %v", cropIDs(outOfRange), err)
	}

	urea := mustSaveFertilizer(t, s, "Urea")
	if urea.ID != 1 {
		t.Fatalf("fertilizer id: got %d, want 1", urea.ID)
	}
}
