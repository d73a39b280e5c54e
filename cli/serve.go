// ABOUTME: Serve CLI command
// ABOUTME: Runs the HTTP API with scheduled CRM syncs until interrupted
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/brokerdesk/config"
	"github.com/harperreed/brokerdesk/desk"
	crmsync "github.com/harperreed/brokerdesk/sync"
	"github.com/harperreed/brokerdesk/web"
)

const shutdownTimeout = 10 * time.Second

// errShutdown stops the errgroup once the server has shut down.
var errShutdown = errors.New("shutdown")

// ServeCommand serves the API on the configured port. When a sync schedule is
// configured, each configured source is synced on that schedule.
func ServeCommand(ctx context.Context, cfg *config.Config, d *desk.Desk, syncer *crmsync.Syncer, logger *log.Logger) error {
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Address(),
		Handler:           web.NewServer(d, syncer, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Sync.Schedule != "" {
		scheduler := cron.New(cron.WithLocation(d.Clock().Location))
		if _, err := scheduler.AddFunc(cfg.Sync.Schedule, func() {
			scheduledSync(gCtx, syncer, cfg.Sync.Sources, logger)
		}); err != nil {
			return fmt.Errorf("invalid sync schedule %q: %w", cfg.Sync.Schedule, err)
		}

		g.Go(func() error {
			logger.Info("Starting sync scheduler", "schedule", cfg.Sync.Schedule, "sources", cfg.Sync.Sources)
			scheduler.Start()
			<-gCtx.Done()
			<-scheduler.Stop().Done()
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", "address", cfg.HTTP.Address())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", "signal", sig.String())
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Server error", "err", err)
		return err
	}

	logger.Info("Server stopped")
	return nil
}

func scheduledSync(ctx context.Context, syncer *crmsync.Syncer, sources []string, logger *log.Logger) {
	for _, source := range sources {
		if ctx.Err() != nil {
			return
		}
		res, err := syncer.Sync(ctx, source)
		switch {
		case errors.Is(err, crmsync.ErrMissingCredentials):
			logger.Debug("Skipping scheduled sync without credentials", "source", source)
		case err != nil:
			logger.Warn("Scheduled sync failed", "source", source, "err", err)
		default:
			logger.Info("Scheduled sync complete", "source", source, "message", res.Message)
		}
	}
}
