package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/sonata/internal/server"
	"github.com/desertthunder/sonata/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the JSON HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.catalogService()
	if err != nil {
		return err
	}
	identity, err := r.identityProvider()
	if err != nil {
		return err
	}

	config := r.config.Server
	if host := cmd.String("host"); host != "" {
		config.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		config.Port = port
	}

	if purged, err := identity.PurgeExpired(ctx); err != nil {
		r.logger.Warn("failed to purge expired sessions", "error", err)
	} else if purged > 0 {
		r.logger.Info("purged expired sessions", "count", purged)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := server.New(config, svc, identity, shared.WithLogger(r.logger, "component", "http"))
	return api.ListenAndServe(ctx)
}
