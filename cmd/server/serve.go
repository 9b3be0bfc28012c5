package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"decor-gallery/internal/observability"
	"decor-gallery/internal/platform/server"
	"decor-gallery/internal/services"
	"decor-gallery/internal/web/handlers"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gallery HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, obsCfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(obsCfg)

	provider, err := observability.NewProvider(ctx, obsCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx).Err(err).Msg("Failed to shut down telemetry")
		}
	}()

	meter := provider.Meter("decor-gallery")
	galleryMetrics, err := observability.NewGalleryMetrics(meter)
	if err != nil {
		return fmt.Errorf("failed to create gallery metrics: %w", err)
	}
	httpMetrics, err := observability.NewHTTPMetrics(meter)
	if err != nil {
		return fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	container, err := services.NewContainer(ctx, cfg, logger, galleryMetrics)
	if err != nil {
		return fmt.Errorf("failed to initialize services container: %w", err)
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Error(context.Background()).Err(err).Msg("Failed to close container")
		}
	}()
	container.Start(ctx)

	srv := server.New(cfg, handlers.NewWithContainer(container, httpMetrics).Routes())

	serveErr := make(chan error, 1)
	go func() {
		logger.Info(ctx).Str("addr", srv.Addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(context.Background()).Msg("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info(shutdownCtx).Msg("Server exited")
	return nil
}
