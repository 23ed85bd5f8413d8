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

	"github.com/redis/go-redis/v9"

	httpapi "github.com/datasektionen/zaiko/internal/zaiko/http"
	"github.com/datasektionen/zaiko/internal/zaiko/service"
	"github.com/datasektionen/zaiko/internal/zaiko/store"
	"github.com/datasektionen/zaiko/internal/zaiko/store/drivers/sqlite"
	"github.com/datasektionen/zaiko/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// ErrFakeAuthInProd is returned when APP_AUTH is disabled in a prod
// environment. The fake session grants read-write without any identity
// check, so the process refuses to start rather than serve it.
var ErrFakeAuthInProd = errors.New("app: APP_AUTH=false is not allowed when ENV=prod")

// Application encapsulates the inventory service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	states service.LoginStateStore

	// Services
	loginService        *service.LoginService
	sessionService      *service.SessionService
	permissionService   *service.PermissionService
	itemService         *service.ItemService
	supplierService     *service.SupplierService
	stockService        *service.StockService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(ctx context.Context, cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "zaiko",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.validate(); err != nil {
		return nil, err
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initAuth(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

func (app *Application) validate() error {
	if !app.cfg.AppAuth {
		if app.cfg.Env == "prod" {
			return ErrFakeAuthInProd
		}
		app.logger.Warn("authentication disabled, serving a fixed development session")
		return nil
	}

	missing := []string{}
	for name, value := range map[string]string{
		"OIDC_PROVIDER": app.cfg.OIDCProvider,
		"OIDC_ID":       app.cfg.OIDCClientID,
		"OIDC_SECRET":   app.cfg.OIDCClientSecret,
		"REDIRECT_URL":  app.cfg.RedirectURL,
		"PLS_URL":       app.cfg.PLSURL,
		"APP_SECRET":    app.cfg.AppSecret,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("app: missing required configuration: %v", missing)
	}
	return nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("zaiko starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down zaiko...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("zaiko stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initAuth wires the login-state store, the permission resolver and the
// OIDC client. Discovery happens here so a misconfigured provider fails
// the process at startup instead of on the first login.
func (app *Application) initAuth(ctx context.Context) error {
	if app.cfg.RedisURL != "" {
		opts, err := redis.ParseURL(app.cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("app: invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("app: redis unreachable: %w", err)
		}
		app.states = service.NewRedisStateStore(client, app.cfg.LoginStateTTL)
		app.logger.Info("login state store backed by redis")
	} else {
		app.states = service.NewMemoryStateStore(app.cfg.LoginStateTTL)
		app.logger.Info("login state store in memory")
	}

	app.sessionService = &service.SessionService{
		Secret: []byte(app.cfg.AppSecret),
		TTL:    app.cfg.SessionTTL,
	}

	if !app.cfg.AppAuth {
		// Fake-auth mode never talks to the provider or pls.
		return nil
	}

	app.permissionService = service.NewPermissionService(app.cfg.PLSURL)

	login, err := service.NewLoginService(ctx, service.LoginConfig{
		Issuer:                 app.cfg.OIDCProvider,
		ClientID:               app.cfg.OIDCClientID,
		ClientSecret:           app.cfg.OIDCClientSecret,
		RedirectURL:            app.cfg.RedirectURL,
		RequireAccessTokenHash: app.cfg.RequireAccessHash,
	}, app.states, app.permissionService)
	if err != nil {
		return err
	}
	app.loginService = login

	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.itemService = &service.ItemService{Store: app.db}
	app.supplierService = &service.SupplierService{Store: app.db}
	app.stockService = &service.StockService{Store: app.db}

	// The redis store expires keys on its own; only the memory store
	// needs periodic sweeping.
	sweeper, _ := app.states.(service.Sweeper)
	app.housekeepingService = service.NewHousekeepingService(
		sweeper,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	auth := &httpapi.SessionAuth{
		Sessions:  app.sessionService,
		LoginPath: "/login",
		APIMode:   app.cfg.APIMode,
		FakeAuth:  !app.cfg.AppAuth,
	}

	router := httpapi.NewRouter(auth, BuildVersion, app.db, app.logger)

	// Wire services to router
	router.LoginService = app.loginService
	router.SessionService = app.sessionService
	router.ItemService = app.itemService
	router.SupplierService = app.supplierService
	router.StockService = app.stockService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
