package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrix/agrix-server/internal/domain"
)

func TestOpen_EmbeddedDrivers(t *testing.T) {
	for _, driver := range []Driver{"", DriverSQLite, DriverBadger} {
		t.Run(string(driver), func(t *testing.T) {
			ctx := context.Background()
			s, err := Open(ctx, Options{Driver: driver, DataPath: t.TempDir()}, nil)
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })

			require.NoError(t, s.Ping(ctx))

			farm := &domain.Farm{Name: "Backend", Size: 1}
			require.NoError(t, s.SaveFarm(ctx, farm))
			assert.Equal(t, int64(1), farm.ID)
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "mongo", DataPath: t.TempDir()}, nil)
	assert.ErrorContains(t, err, `unknown storage driver "mongo"`)
	for _, driver := range Drivers {
		assert.ErrorContains(t, err, string(driver))
	}
}

func TestOpen_PostgresRequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: DriverPostgres}, nil)
	assert.Error(t, err)
}
