package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/agrix/agrix-server/internal/domain"
	"github.com/agrix/agrix-server/internal/store"
)

// fertilizerColumns is the ordered list of columns selected in fertilizer queries.
// Must match the scan order in scanFertilizer.
const fertilizerColumns = `id, name, brand, composition`

func scanFertilizer(scanner interface{ Scan(dest ...any) error }) (*domain.Fertilizer, error) {
	var f domain.Fertilizer
	if err := scanner.Scan(&f.ID, &f.Name, &f.Brand, &f.Composition); err != nil {
		return nil, err
	}
	return &f, nil
}

// SaveFertilizer inserts a fertilizer when its ID is zero, assigning the
// new ID, and upserts it otherwise.
func (s *Store) SaveFertilizer(ctx context.Context, f *domain.Fertilizer) error {
	if f.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO fertilizers (name, brand, composition) VALUES (?, ?, ?)`,
			f.Name, f.Brand, f.Composition)
		if err != nil {
			return fmt.Errorf("insert fertilizer: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("fertilizer id: %w", err)
		}
		f.ID = id
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fertilizers (id, name, brand, composition) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			brand = excluded.brand,
			composition = excluded.composition`,
		f.ID, f.Name, f.Brand, f.Composition)
	if err != nil {
		return fmt.Errorf("upsert fertilizer %d: %w", f.ID, err)
	}
	return nil
}

// GetFertilizer retrieves a fertilizer by its ID.
// Returns store.ErrNotFound if the fertilizer does not exist.
func (s *Store) GetFertilizer(ctx context.Context, id int64) (*domain.Fertilizer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+fertilizerColumns+` FROM fertilizers WHERE id = ?`, id)

	f, err := scanFertilizer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFoundf("fertilizer %d", id)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ListFertilizers returns all fertilizers in insertion order.
func (s *Store) ListFertilizers(ctx context.Context) ([]*domain.Fertilizer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+fertilizerColumns+` FROM fertilizers ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFertilizers(rows)
}

// GetFertilizersByIDs returns the fertilizers for ids, in the order given.
// IDs that do not exist are skipped.
func (s *Store) GetFertilizersByIDs(ctx context.Context, ids []int64) ([]*domain.Fertilizer, error) {
	if len(ids) == 0 {
		return []*domain.Fertilizer{}, nil
	}

	byID := make(map[int64]*domain.Fertilizer, len(ids))
	for chunk := range slices.Chunk(ids, maxInParams) {
		found, err := s.fertilizersIn(ctx, chunk)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			byID[f.ID] = f
		}
	}

	result := make([]*domain.Fertilizer, 0, len(ids))
	for _, id := range ids {
		if f, ok := byID[id]; ok {
			result = append(result, f)
		}
	}
	return result, nil
}

func (s *Store) fertilizersIn(ctx context.Context, ids []int64) ([]*domain.Fertilizer, error) {
	placeholders, args := inClause(ids)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+fertilizerColumns+` FROM fertilizers WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFertilizers(rows)
}

func collectFertilizers(rows *sql.Rows) ([]*domain.Fertilizer, error) {
	fertilizers := []*domain.Fertilizer{}
	for rows.Next() {
		f, err := scanFertilizer(rows)
		if err != nil {
			return nil, err
		}
		fertilizers = append(fertilizers, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return fertilizers, nil
}
