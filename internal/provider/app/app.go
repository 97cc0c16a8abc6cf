package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/oauth1d/internal/provider/http"
	"github.com/aussiebroadwan/oauth1d/internal/provider/metrics"
	"github.com/aussiebroadwan/oauth1d/internal/provider/service"
	"github.com/aussiebroadwan/oauth1d/internal/provider/store"
	"github.com/aussiebroadwan/oauth1d/pkg/jwtx"
	"github.com/aussiebroadwan/oauth1d/pkg/otelx"
	"github.com/aussiebroadwan/oauth1d/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

const serviceName = "oauth1d"

// Application wires the provider's store, services and HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db            store.Store
	keyManager    *jwtx.KeyManager
	metrics       *metrics.Metrics
	otelShutdown  otelx.ShutdownFunc
	jwksRefresher *JWKSRefresher // nil unless SESSION_JWKS_URL is used

	authorizeService    *service.AuthorizeService
	exchangeService     *service.ExchangeService
	revokeService       *service.RevokeService
	clientService       *service.ClientService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with every dependency initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: serviceName,
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}

	ctx := context.Background()

	shutdown, err := otelx.Setup(ctx, otelx.Config{
		ServiceName:    serviceName,
		ServiceVersion: BuildVersion,
		Endpoint:       cfg.OTelEndpoint,
		SampleRatio:    cfg.OTelSampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	app.otelShutdown = shutdown

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	km, err := InitSessionKeys(ctx, cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize session keys: %w", err)
	}
	app.keyManager = km
	if cfg.sessionKeySource() == keySourceJWKSURL {
		app.jwksRefresher = NewJWKSRefresher(cfg.SessionJWKSURL, cfg.SessionJWKSRefresh, km.KeySet, app.logger)
	}

	app.initServices()
	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Handler exposes the fully wrapped HTTP handler.
func (app *Application) Handler() http.Handler { return app.server.Handler }

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()
	if app.jwksRefresher != nil {
		app.jwksRefresher.Start()
	}

	app.logger.Info("oauth1d starting",
		"port", app.cfg.Port,
		"database_driver", app.cfg.DatabaseDriver,
		"scope_source", app.cfg.ScopeSource,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains the server, stops background workers and closes the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down oauth1d...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()
	if app.jwksRefresher != nil {
		app.jwksRefresher.Stop()
	}

	if err := app.otelShutdown(ctx); err != nil {
		app.logger.Error("error flushing traces", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("oauth1d stopped")
	return nil
}

func (app *Application) initDatabase(ctx context.Context) error {
	db, err := OpenMigratedStore(ctx, app.cfg)
	if err != nil {
		return err
	}
	app.db = db

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

func (app *Application) initServices() {
	app.authorizeService = &service.AuthorizeService{
		Store:           app.db,
		Recorder:        app.metrics,
		StrictCallbacks: app.cfg.StrictCallbacks,
	}
	app.exchangeService = &service.ExchangeService{
		Store:           app.db,
		Recorder:        app.metrics,
		ScopeSource:     app.cfg.ExchangeScopeSource(),
		RequireVerifier: app.cfg.RequireVerifier,
	}
	app.revokeService = &service.RevokeService{Store: app.db, Recorder: app.metrics}
	app.clientService = &service.ClientService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.RequestTokenTTL,
	)
	app.housekeepingService.Recorder = app.metrics
}

func (app *Application) initHTTP() error {
	router, err := httpapi.NewRouter(
		app.keyManager.KeySet,
		app.keyManager.Verifier,
		BuildVersion,
		app.db,
		app.metrics,
		app.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize views: %w", err)
	}

	router.LoginURL = app.cfg.LoginURL
	router.AuthorizeService = app.authorizeService
	router.ExchangeService = app.exchangeService
	router.RevokeService = app.revokeService
	router.ClientService = app.clientService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           otelx.Handler(router, serviceName),
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
