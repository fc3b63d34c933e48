package badgerdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/agrix/agrix-server/internal/domain"
	"github.com/agrix/agrix-server/internal/store"
	"github.com/agrix/agrix-server/internal/store/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "badger"), nil, Options{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestStore(t) })
}

func TestConformance_InMemory(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := Open("", nil, Options{InMemory: true})
		if err != nil {
			t.Fatalf("open in-memory store: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestPadID_SortsNumerically(t *testing.T) {
	if padID(9) >= padID(10) {
		t.Errorf("padID(9)=%q should sort before padID(10)=%q", padID(9), padID(10))
	}
	if len(padID(1)) != idWidth {
		t.Errorf("padID width: got %d, want %d", len(padID(1)), idWidth)
	}
}

func TestSequence_SurvivesReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "badger")
	ctx := context.Background()

	s, err := Open(dir, nil, Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	first := &domain.Fertilizer{Name: "Primeiro"}
	if err := s.SaveFertilizer(ctx, first); err != nil {
		t.Fatalf("SaveFertilizer: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = Open(dir, nil, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	second := &domain.Fertilizer{Name: "Segundo"}
	if err := s.SaveFertilizer(ctx, second); err != nil {
		t.Fatalf("SaveFertilizer: %v", err)
	}
	if second.ID != first.ID+1 {
		t.Errorf("id after reopen: got %d, want %d", second.ID, first.ID+1)
	}
}

func TestSave_SkipsExplicitlyUsedIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveFarm(ctx, &domain.Farm{ID: 1, Name: "Explicit"}); err != nil {
		t.Fatalf("SaveFarm explicit: %v", err)
	}
	next := &domain.Farm{Name: "Assigned"}
	if err := s.SaveFarm(ctx, next); err != nil {
		t.Fatalf("SaveFarm: %v", err)
	}
	if next.ID != 2 {
		t.Errorf("assigned id: got %d, want 2", next.ID)
	}

	got, err := s.GetFarm(ctx, 1)
	if err != nil {
		t.Fatalf("GetFarm: %v", err)
	}
	if got.Name != "Explicit" {
		t.Errorf("explicit farm overwritten: %+v", got)
	}
}

func TestSaveCrop_MovesIndexKeys(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	farm := &domain.Farm{Name: "F"}
	if err := s.SaveFarm(ctx, farm); err != nil {
		t.Fatalf("SaveFarm: %v", err)
	}
	crop := &domain.Crop{Name: "Feijão", FarmID: farm.ID, HarvestDate: domain.MustParseDate("2023-03-01")}
	if err := s.SaveCrop(ctx, crop); err != nil {
		t.Fatalf("SaveCrop: %v", err)
	}

	crop.HarvestDate = domain.MustParseDate("2023-09-01")
	if err := s.SaveCrop(ctx, crop); err != nil {
		t.Fatalf("SaveCrop update: %v", err)
	}

	march, err := s.ListCropsByHarvestDate(ctx, domain.MustParseDate("2023-03-01"), domain.MustParseDate("2023-03-31"))
	if err != nil {
		t.Fatalf("ListCropsByHarvestDate: %v", err)
	}
	if len(march) != 0 {
		t.Errorf("stale harvest index entry still matches: %+v", march)
	}

	sept, err := s.ListCropsByHarvestDate(ctx, domain.MustParseDate("2023-09-01"), domain.MustParseDate("2023-09-30"))
	if err != nil {
		t.Fatalf("ListCropsByHarvestDate: %v", err)
	}
	if len(sept) != 1 || sept[0].ID != crop.ID {
		t.Errorf("September range: got %+v", sept)
	}
}

func TestSaveCrop_UnknownFarm(t *testing.T) {
	s := newTestStore(t)

	err := s.SaveCrop(context.Background(), &domain.Crop{Name: "Orphan", FarmID: 404})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("SaveCrop with unknown farm: got %v, want ErrInvalidInput", err)
	}
}

func TestList_ClosedDatabaseReturnsError(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "badger"), nil, Options{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	if err := s.SaveFarm(ctx, &domain.Farm{Name: "Fechada"}); err != nil {
		t.Fatalf("SaveFarm: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if farms, err := s.ListFarms(ctx); err == nil {
		t.Errorf("ListFarms after close: got %v and nil error, want error", farms)
	}
	if crops, err := s.ListCrops(ctx); err == nil {
		t.Errorf("ListCrops after close: got %v and nil error, want error", crops)
	}
	if fertilizers, err := s.ListFertilizers(ctx); err == nil {
		t.Errorf("ListFertilizers after close: got %v and nil error, want error", fertilizers)
	}
}
