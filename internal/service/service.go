// Package service implements the farm, crop and fertilizer managers.
// Every dependency is passed in explicitly; nothing is package-level state.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/agrix/agrix-server/internal/domain"
	domainerrors "github.com/agrix/agrix-server/internal/errors"
	"github.com/agrix/agrix-server/internal/store"
)

// Indexer keeps the search index in step with created records.
type Indexer interface {
	IndexFarm(ctx context.Context, farm *domain.Farm) error
	IndexCrop(ctx context.Context, crop *domain.Crop) error
	IndexFertilizer(ctx context.Context, fertilizer *domain.Fertilizer) error
}

// Recorder receives operation metrics.
type Recorder interface {
	EntityCreated(entity string)
	FertilizerAssociated(added bool)
	NotFound(entity string)
}

type noopIndexer struct{}

func (noopIndexer) IndexFarm(context.Context, *domain.Farm) error             { return nil }
func (noopIndexer) IndexCrop(context.Context, *domain.Crop) error             { return nil }
func (noopIndexer) IndexFertilizer(context.Context, *domain.Fertilizer) error { return nil }

type noopRecorder struct{}

func (noopRecorder) EntityCreated(string)      {}
func (noopRecorder) FertilizerAssociated(bool) {}
func (noopRecorder) NotFound(string)           {}

// deps is shared by the managers. Nil indexer/recorder are replaced by no-ops.
type deps struct {
	store    store.Store
	index    Indexer
	recorder Recorder
	logger   *slog.Logger
}

func newDeps(st store.Store, index Indexer, recorder Recorder, logger *slog.Logger) deps {
	if index == nil {
		index = noopIndexer{}
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return deps{store: st, index: index, recorder: recorder, logger: logger}
}

// notFound converts a store miss into the entity-specific domain error.
func (d deps) notFound(err error, sentinel *domainerrors.Error, id int64) error {
	if errors.Is(err, store.ErrNotFound) {
		d.recorder.NotFound(sentinel.Entity)
		return sentinel.WithDetails(map[string]int64{"id": id}).WithCause(err)
	}
	return fmt.Errorf("get %s %d: %w", sentinel.Entity, id, err)
}

func (d deps) farm(ctx context.Context, id int64) (*domain.Farm, error) {
	f, err := d.store.GetFarm(ctx, id)
	if err != nil {
		return nil, d.notFound(err, domainerrors.ErrFarmNotFound, id)
	}
	return f, nil
}

func (d deps) crop(ctx context.Context, id int64) (*domain.Crop, error) {
	c, err := d.store.GetCrop(ctx, id)
	if err != nil {
		return nil, d.notFound(err, domainerrors.ErrCropNotFound, id)
	}
	return c, nil
}

func (d deps) fertilizer(ctx context.Context, id int64) (*domain.Fertilizer, error) {
	f, err := d.store.GetFertilizer(ctx, id)
	if err != nil {
		return nil, d.notFound(err, domainerrors.ErrFertilizerNotFound, id)
	}
	return f, nil
}

// indexed reports an index failure without failing the write that caused it.
func (d deps) indexed(err error, entity string, id int64) {
	if err != nil {
		d.logger.Warn("failed to update search index",
			"entity", entity,
			"id", id,
			"error", err,
		)
	}
}
