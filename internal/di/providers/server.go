package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/agrix/agrix-server/internal/api"
	"github.com/agrix/agrix-server/internal/config"
	"github.com/agrix/agrix-server/internal/id"
	"github.com/agrix/agrix-server/internal/logger"
	"github.com/agrix/agrix-server/internal/metrics"
	"github.com/agrix/agrix-server/internal/ratelimit"
	"github.com/agrix/agrix-server/internal/service"
)

// RateLimiterHandle wraps the POST rate limiter. KeyedRateLimiter is nil
// when rate limiting is disabled.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	if h.KeyedRateLimiter != nil {
		h.Stop()
	}
	return nil
}

// ProvideRateLimiter provides the per-IP limiter for mutating requests.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	if !cfg.RateLimit.Enabled {
		return &RateLimiterHandle{}, nil
	}
	return &RateLimiterHandle{
		KeyedRateLimiter: ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideAPIServer provides the HTTP handler with every route mounted.
func ProvideAPIServer(i do.Injector) (*api.Server, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	limiterHandle := do.MustInvoke[*RateLimiterHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Farm:       do.MustInvoke[*service.FarmService](i),
		Crop:       do.MustInvoke[*service.CropService](i),
		Fertilizer: do.MustInvoke[*service.FertilizerService](i),
		Search:     do.MustInvoke[*service.SearchService](i),
	}

	return api.NewServer(storeHandle.Store, services, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        do.MustInvoke[*metrics.Metrics](i),
		RateLimiter:    limiterHandle.KeyedRateLimiter,
		InstanceID:     id.Instance(),
	}, log.Component("http").Logger), nil
}

// ProvideHTTPServer provides the HTTP server. The listener is bound before
// returning, so a busy or invalid address fails the provider.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	handler := do.MustInvoke[*api.Server](i)
	log := do.MustInvoke[*logger.Logger](i)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if err := startHTTPServer(srv, log); err != nil {
		return nil, err
	}
	return &HTTPServerHandle{Server: srv}, nil
}

// startHTTPServer binds srv.Addr and serves in the background. srv.Addr is
// updated to the bound address, which differs when the port was 0.
func startHTTPServer(srv *http.Server, log *logger.Logger) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}
	srv.Addr = ln.Addr().String()

	log.Info("HTTP server starting", "addr", srv.Addr)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server error")
		}
	}()
	return nil
}
