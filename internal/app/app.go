package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"chunkdash/internal/config"
	"chunkdash/internal/datasource"
	"chunkdash/internal/errors"
	"chunkdash/internal/infrastructure"
	customMiddleware "chunkdash/internal/middleware"
	"chunkdash/internal/reports"
	"chunkdash/internal/services"
	handlers "chunkdash/internal/transport/http"
	"chunkdash/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Services      *ServiceContainer
	OTelProviders *infrastructure.OTelProviders
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Catalog *reports.Catalog
	DB      *datasource.SQLSource
	Source  datasource.Source
	Breaker *datasource.BreakerSource
	Reports *services.ReportService
	Export  *services.ExportService
	Health  *services.HealthService
	Metrics *infrastructure.BusinessMetrics
}

// NewServices builds the catalog, data source and services from cfg. The
// caller owns the returned container and must Close it.
func NewServices(cfg *config.Config, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) (*ServiceContainer, error) {
	catalog, err := loadCatalog(cfg.Reports)
	if err != nil {
		return nil, err
	}
	logger.Info("Report catalog loaded",
		slog.Int("reports", catalog.Len()),
		slog.String("file", cfg.Reports.CatalogFile))

	db, err := datasource.Open(cfg.Database,
		datasource.WithLogger(logger),
		datasource.WithMetrics(metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open data source: %w", err)
	}

	sc := &ServiceContainer{
		Catalog: catalog,
		DB:      db,
		Source:  db,
		Metrics: metrics,
	}

	var breakerState services.BreakerState
	if cfg.Breaker.Enabled {
		sc.Breaker = datasource.NewBreakerSource(db, cfg.Breaker, logger, metrics)
		sc.Source = sc.Breaker
		breakerState = sc.Breaker
	}

	sc.Reports = services.NewReportService(catalog, sc.Source, logger, metrics, cfg.Reports.MaxChunks)
	sc.Export = services.NewExportService(cfg.Export, logger, metrics)
	sc.Health = services.NewHealthService(db, breakerState, catalog.Len(), logger)
	return sc, nil
}

// Close releases the database handle
func (sc *ServiceContainer) Close() error {
	if sc.DB == nil {
		return nil
	}
	return sc.DB.Close()
}

func loadCatalog(cfg config.ReportsConfig) (*reports.Catalog, error) {
	if cfg.CatalogFile == "" {
		return reports.DefaultCatalog()
	}
	catalog, err := reports.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load report catalog: %w", err)
	}
	return catalog, nil
}

// NewApplication wires configuration, telemetry, services and the router
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("driver", cfg.Database.Driver))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	svc, err := NewServices(cfg, logger, metrics)
	if err != nil {
		return nil, err
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		Services:      svc,
		OTelProviders: otelProviders,
	}
	app.setupRouter()
	app.createServer()
	return app, nil
}

// setupRouter configures the HTTP router with all routes.
// Order: RequestID → RealIP → OTel → Logger → Recoverer → headers → CORS → rate limit → body cap.
func (a *Application) setupRouter() {
	cfg := a.Config
	errorHandler := errors.NewErrorHandler(a.Logger, cfg.Logging.Development)
	validator := customMiddleware.NewValidator()

	r := chi.NewRouter()
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Services.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(errorHandler))
	r.Use(customMiddleware.SecurityHeaders)
	if cfg.Security.EnableCORS {
		r.Use(customMiddleware.CORS(cfg.Security.AllowedOrigins))
	}
	if cfg.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			cfg.Security.RateLimit.RPS,
			cfg.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}
	r.Use(customMiddleware.MaxBodyBytes(cfg.Server.MaxBodyBytes))

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	timeout := customMiddleware.Timeout(cfg.Server.RequestTimeout, a.Logger)
	reportHandler := handlers.NewReportHandler(a.Services.Reports, validator, a.Logger, errorHandler)
	exportHandler := handlers.NewExportHandler(a.Services.Export, validator, a.Logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)

	r.Route("/api", func(r chi.Router) {
		healthHandler.Mount(r)
		r.With(timeout).Mount("/", reportHandler.Routes())
	})
	r.With(timeout).Mount("/export", exportHandler.Routes())
	r.Group(func(r chi.Router) {
		r.Use(timeout)
		reportHandler.Mount(r)
	})
	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server in the background. A listen failure cancels ctx.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	if status := a.Services.Health.ReadinessCheck(ctx); status.Status != "ready" {
		a.Logger.WarnContext(ctx, "Startup readiness warnings", slog.Any("services", status.Services))
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://%s", a.Server.Addr)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := a.Services.Close(); err != nil {
		a.Logger.ErrorContext(ctx, "Error closing data source", slog.String("error", err.Error()))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted or the server fails
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.ErrorContext(ctx, "Server stopped unexpectedly")
	}

	// ctx may already be cancelled; shutdown gets a fresh one
	return a.Stop(context.Background())
}
