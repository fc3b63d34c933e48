package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agrix/agrix-server/internal/domain"
	"github.com/agrix/agrix-server/internal/store"
)

const fertilizerColumns = `id, name, brand, composition`

func scanFertilizer(scanner interface{ Scan(dest ...any) error }) (*domain.Fertilizer, error) {
	var f domain.Fertilizer
	if err := scanner.Scan(&f.ID, &f.Name, &f.Brand, &f.Composition); err != nil {
		return nil, err
	}
	return &f, nil
}

// SaveFertilizer inserts a fertilizer when its ID is zero and upserts it otherwise.
func (s *Store) SaveFertilizer(ctx context.Context, f *domain.Fertilizer) error {
	if f.ID == 0 {
		err := s.db.QueryRowContext(ctx,
			`INSERT INTO fertilizers (name, brand, composition) VALUES ($1, $2, $3) RETURNING id`,
			f.Name, f.Brand, f.Composition).Scan(&f.ID)
		if err != nil {
			return fmt.Errorf("insert fertilizer: %w", err)
		}
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fertilizers (id, name, brand, composition) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			brand = EXCLUDED.brand,
			composition = EXCLUDED.composition`,
		f.ID, f.Name, f.Brand, f.Composition)
	if err != nil {
		return fmt.Errorf("upsert fertilizer %d: %w", f.ID, err)
	}
	return syncSequence(ctx, s.db, "fertilizers")
}

// GetFertilizer retrieves a fertilizer by its ID.
func (s *Store) GetFertilizer(ctx context.Context, id int64) (*domain.Fertilizer, error) {
	f, err := scanFertilizer(s.db.QueryRowContext(ctx,
		`SELECT `+fertilizerColumns+` FROM fertilizers WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFoundf("fertilizer %d", id)
	}
	return f, err
}

// ListFertilizers returns all fertilizers in id order.
func (s *Store) ListFertilizers(ctx context.Context) ([]*domain.Fertilizer, error) {
	return s.queryFertilizers(ctx, `SELECT `+fertilizerColumns+` FROM fertilizers ORDER BY id`)
}

// GetFertilizersByIDs returns the fertilizers for ids in the given order,
// skipping ids that do not exist.
func (s *Store) GetFertilizersByIDs(ctx context.Context, ids []int64) ([]*domain.Fertilizer, error) {
	if len(ids) == 0 {
		return []*domain.Fertilizer{}, nil
	}

	found, err := s.queryFertilizers(ctx,
		`SELECT `+fertilizerColumns+` FROM fertilizers WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*domain.Fertilizer, len(found))
	for _, f := range found {
		byID[f.ID] = f
	}
	result := make([]*domain.Fertilizer, 0, len(ids))
	for _, id := range ids {
		if f, ok := byID[id]; ok {
			result = append(result, f)
		}
	}
	return result, nil
}

func (s *Store) queryFertilizers(ctx context.Context, query string, args ...any) ([]*domain.Fertilizer, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fertilizers := []*domain.Fertilizer{}
	for rows.Next() {
		f, err := scanFertilizer(rows)
		if err != nil {
			return nil, err
		}
		fertilizers = append(fertilizers, f)
	}
	return fertilizers, rows.Err()
}
