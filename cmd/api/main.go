// Package main provides the entry point for the Agrix server application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/agrix/agrix-server/internal/di"
	"github.com/agrix/agrix-server/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	injector := di.NewContainer()

	if err := di.Bootstrap(ctx, injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		_ = injector.Shutdown()
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)

	<-ctx.Done()

	log.Info("Shutting down server gracefully...")

	// Services implementing do.Shutdownable are stopped in reverse
	// dependency order: HTTP server first, store last.
	if err := injector.Shutdown(); err != nil {
		log.WithError(err).Error("Shutdown error")
	}

	log.Info("Server stopped")
}
