package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agrix/agrix-server/internal/domain"
	"github.com/agrix/agrix-server/internal/store"
)

// farmColumns is the ordered list of columns selected in farm queries.
// Must match the scan order in scanFarm.
const farmColumns = `id, name, size`

func scanFarm(scanner interface{ Scan(dest ...any) error }) (*domain.Farm, error) {
	var f domain.Farm
	if err := scanner.Scan(&f.ID, &f.Name, &f.Size); err != nil {
		return nil, err
	}
	return &f, nil
}

// SaveFarm inserts a farm when its ID is zero, assigning the new ID,
// and upserts it otherwise.
func (s *Store) SaveFarm(ctx context.Context, f *domain.Farm) error {
	if f.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO farms (name, size) VALUES (?, ?)`,
			f.Name, f.Size)
		if err != nil {
			return fmt.Errorf("insert farm: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("farm id: %w", err)
		}
		f.ID = id
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO farms (id, name, size) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, size = excluded.size`,
		f.ID, f.Name, f.Size)
	if err != nil {
		return fmt.Errorf("upsert farm %d: %w", f.ID, err)
	}
	return nil
}

// GetFarm retrieves a farm by its ID.
// Returns store.ErrNotFound if the farm does not exist.
func (s *Store) GetFarm(ctx context.Context, id int64) (*domain.Farm, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+farmColumns+` FROM farms WHERE id = ?`, id)

	f, err := scanFarm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFoundf("farm %d", id)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ListFarms returns all farms in insertion order.
func (s *Store) ListFarms(ctx context.Context) ([]*domain.Farm, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+farmColumns+` FROM farms ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	farms := []*domain.Farm{}
	for rows.Next() {
		f, err := scanFarm(rows)
		if err != nil {
			return nil, err
		}
		farms = append(farms, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return farms, nil
}
