package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/soukly/salla-relay/internal/oauth"
	"github.com/soukly/salla-relay/internal/refresh"
	"github.com/soukly/salla-relay/internal/relay"
	"github.com/soukly/salla-relay/internal/webhook"
)

// App orchestrates the lifecycle of the relay server and the refresh scheduler.
type App struct {
	cfg         *Config
	server      *relay.Server
	coordinator *refresh.Coordinator
}

// New creates a new App instance. No I/O is performed; the store connects lazily on
// first use.
func New(cfg *Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := cfg.Store.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to create token store: %w", err)
	}

	var clientOpts []oauth.ClientOption
	if cfg.Salla.TokenURL != "" {
		endpoint := oauth.Endpoint
		endpoint.TokenURL = cfg.Salla.TokenURL
		clientOpts = append(clientOpts, oauth.WithEndpoint(endpoint))
	}
	oauthClient := oauth.NewClient(cfg.Salla.ClientID, cfg.Salla.ClientSecret, clientOpts...)

	coordinator := refresh.New(store, oauthClient,
		refresh.WithConcurrency(cfg.Refresh.Concurrency),
		refresh.WithTenantTimeout(cfg.Refresh.TenantTimeout),
	)

	notifier := webhook.NewNotifier(webhook.NotifierConfig{
		PaymentURL:      cfg.Notify.PaymentURL,
		CancellationURL: cfg.Notify.CancellationURL,
		LoggingURL:      cfg.Notify.LoggingURL,
		RefundURL:       cfg.Notify.RefundURL,
		Timeout:         cfg.Notify.Timeout,
	})

	ingress := webhook.NewHandler(cfg.Webhook.Secret, store, notifier)
	bulkRefresh := relay.NewRefreshHandler(cfg.Scheduler.Secret, coordinator)

	return &App{
		cfg:         cfg,
		server:      relay.New(ingress, bulkRefresh, store),
		coordinator: coordinator,
	}, nil
}

// RunRefresh executes one bulk refresh pass outside the server lifecycle.
func (a *App) RunRefresh(ctx context.Context) (*refresh.Report, error) {
	return a.coordinator.Run(ctx)
}

// Start starts all services and blocks until shutdown is triggered.
// Uses errgroup for runtime error monitoring and shutdown function collection for coordinated cleanup.
func (a *App) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	address := a.cfg.Server.Host + ":" + strconv.FormatUint(uint64(a.cfg.Server.Port), 10)
	var shutdownFuncs []func(context.Context) error

	// Startup phase: Start services
	slog.InfoContext(gCtx, "starting relay server", "address", address)
	serverErrCh, err := a.server.Start(gCtx, address)
	if err != nil {
		return fmt.Errorf("server startup failed: %w", err)
	}
	shutdownFuncs = append(shutdownFuncs, a.server.Shutdown)

	// Monitor runtime errors - errgroup cancels context on first error
	g.Go(func() error {
		select {
		case err := <-serverErrCh:
			if err != nil {
				slog.ErrorContext(gCtx, "server runtime error", "error", err)
				return fmt.Errorf("server: %w", err)
			}
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	// Background refresh scheduler. Run failures are logged, not fatal: the next tick
	// (or the HTTP trigger) retries.
	if a.cfg.Refresh.Interval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(a.cfg.Refresh.Interval)
			defer ticker.Stop()
			for {
				select {
				case <-gCtx.Done():
					return nil
				case <-ticker.C:
					if _, err := a.coordinator.Run(gCtx); err != nil {
						slog.ErrorContext(gCtx, "scheduled bulk refresh aborted", "error", err)
					}
				}
			}
		})
	}

	slog.InfoContext(gCtx, "application ready", "address", address)

	runtimeErr := g.Wait()

	slog.InfoContext(gCtx, "shutting down services")

	// Shutdown phase: Stop all services
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Shutdown.Timeout)
	defer cancel()

	var errs []error
	if runtimeErr != nil {
		errs = append(errs, fmt.Errorf("runtime: %w", runtimeErr))
	}

	for i := len(shutdownFuncs) - 1; i >= 0; i-- {
		if err := shutdownFuncs[i](shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "service shutdown failed", "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("application stopped")
	return nil
}
