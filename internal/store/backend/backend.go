// Package backend opens the store.Store implementation selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/agrix/agrix-server/internal/store"
	"github.com/agrix/agrix-server/internal/store/badgerdb"
	"github.com/agrix/agrix-server/internal/store/postgres"
	"github.com/agrix/agrix-server/internal/store/sqlite"
)

// Driver identifies a concrete persistent storage implementation.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file (default)
	DriverBadger   Driver = "badger"   // embedded badger key-value directory
	DriverPostgres Driver = "postgres" // PostgreSQL server
)

// Drivers lists every supported driver.
var Drivers = []Driver{DriverSQLite, DriverBadger, DriverPostgres}

// Options selects and configures a backend.
type Options struct {
	Driver      Driver
	DataPath    string // directory for the embedded drivers
	PostgresDSN string
}

// SQLitePath is the database file used by the sqlite driver under dataPath.
func SQLitePath(dataPath string) string {
	return filepath.Join(dataPath, "agrix.db")
}

// BadgerPath is the directory used by the badger driver under dataPath.
func BadgerPath(dataPath string) string {
	return filepath.Join(dataPath, "badger")
}

// Open returns the store for opts.Driver. An empty driver means sqlite.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (store.Store, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	switch driver {
	case DriverSQLite:
		if err := os.MkdirAll(opts.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		return sqlite.Open(SQLitePath(opts.DataPath), logger)
	case DriverBadger:
		if err := os.MkdirAll(opts.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		return badgerdb.Open(BadgerPath(opts.DataPath), logger, badgerdb.Options{})
	case DriverPostgres:
		return postgres.Open(ctx, opts.PostgresDSN, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q (supported: %v)", driver, Drivers)
	}
}
