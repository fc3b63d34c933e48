package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/agrix/agrix-server/internal/config"
	"github.com/agrix/agrix-server/internal/logger"
	"github.com/agrix/agrix-server/internal/store"
	"github.com/agrix/agrix-server/internal/store/backend"
)

// openTimeout bounds connecting to a remote store.
const openTimeout = 15 * time.Second

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the store backend named by the configuration.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	st, err := backend.Open(ctx, backend.Options{
		Driver:      backend.Driver(cfg.Storage.Driver),
		DataPath:    cfg.Storage.DataPath,
		PostgresDSN: cfg.Storage.PostgresDSN,
	}, log.Component("store").Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Store initialized", "driver", cfg.Storage.Driver, "data_path", cfg.Storage.DataPath)

	return &StoreHandle{Store: st}, nil
}
