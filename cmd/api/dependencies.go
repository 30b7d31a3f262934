package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/FACorreiaa/fintrack-api/internal/domain/budget"
	"github.com/FACorreiaa/fintrack-api/internal/domain/category"
	"github.com/FACorreiaa/fintrack-api/internal/domain/import/engine"
	"github.com/FACorreiaa/fintrack-api/internal/domain/import/enrich"
	"github.com/FACorreiaa/fintrack-api/internal/domain/import/extractor"
	importhandler "github.com/FACorreiaa/fintrack-api/internal/domain/import/handler"
	importrepo "github.com/FACorreiaa/fintrack-api/internal/domain/import/repository"
	importservice "github.com/FACorreiaa/fintrack-api/internal/domain/import/service"
	"github.com/FACorreiaa/fintrack-api/internal/domain/transaction"
	httphandler "github.com/FACorreiaa/fintrack-api/internal/http/handler"
	"github.com/FACorreiaa/fintrack-api/internal/http/middleware"
	"github.com/FACorreiaa/fintrack-api/pkg/config"
	"github.com/FACorreiaa/fintrack-api/pkg/cron"
	"github.com/FACorreiaa/fintrack-api/pkg/db"
	"github.com/FACorreiaa/fintrack-api/pkg/session"
)

// Dependencies holds all application dependencies.
type Dependencies struct {
	Config   *config.Config
	DB       *db.DB
	Logger   *slog.Logger
	Registry *prometheus.Registry

	PreviewStore *session.Store[importservice.PreviewResult]
	Scheduler    *cron.Scheduler
	RateLimiter  *middleware.RateLimiter
	Sessions     middleware.SessionProvider
	HTTPMetrics  *middleware.PrometheusMiddleware

	// Services
	CategoryService    *category.Service
	TransactionService *transaction.Service
	BudgetService      *budget.Service
	ImportService      *importservice.ImportService

	// Handlers
	CategoryHandler    *category.Handler
	TransactionHandler *transaction.Handler
	BudgetHandler      *budget.Handler
	ImportHandler      *importhandler.ImportHandler
}

// InitDependencies initializes all application dependencies.
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	deps.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := deps.initServices(ctx); err != nil {
		deps.DB.Close()
		return nil, fmt.Errorf("init services: %w", err)
	}
	deps.initHandlers()

	logger.Info("all dependencies initialized")
	return deps, nil
}

func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}
	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	d.Logger.Info("database connected, migrations applied")
	return nil
}

func (d *Dependencies) initServices(ctx context.Context) error {
	pool := d.DB.Pool

	categoryRepo := category.NewRepository(pool)
	d.CategoryService = category.NewService(categoryRepo, d.Logger)

	transactionRepo := transaction.NewRepository(pool)
	d.TransactionService = transaction.NewService(transactionRepo, categoryRepo, d.Logger)

	budgetRepo := budget.NewRepository(pool)
	d.BudgetService = budget.NewService(budgetRepo, categoryRepo, d.Logger)

	// Statement import pipeline: extract text, extract transactions with
	// Gemini, enrich with categories and duplicate flags.
	ext := extractor.New(
		extractor.NewFitzOpener(),
		extractor.NewTesseractFactory(d.Config.Import.OCRLanguage),
		d.Config.Import.MinTextChars,
		d.Logger,
	)

	gemini, err := engine.NewGeminiClient(ctx, d.Config.Gemini.APIKey, d.Config.Gemini.Model)
	if err != nil {
		return fmt.Errorf("create gemini client: %w", err)
	}
	eng := engine.New(gemini, d.Logger)

	impRepo := importrepo.NewPostgresRepository(pool)
	enricher := enrich.New(impRepo, d.Config.Import.DuplicatePrefixLen, d.Logger)

	d.PreviewStore = session.NewStore[importservice.PreviewResult](
		time.Duration(d.Config.Import.SessionTTLMinutes)*time.Minute,
		d.Config.Import.SessionCapacity,
	)

	d.ImportService = importservice.NewImportService(
		ext, eng, enricher, impRepo,
		d.PreviewStore,
		importservice.NewMetrics(d.Registry),
		d.Logger,
	)

	d.Sessions = middleware.NewHTTPSessionProvider(d.Config.Auth.ProviderURL)
	d.RateLimiter = middleware.NewRateLimiter(
		float64(d.Config.Server.RateLimitPerSecond),
		d.Config.Server.RateLimitBurst,
	)

	d.Scheduler = cron.NewScheduler(d.Logger)
	if err := d.Scheduler.AddPurgeJob("preview_sessions", "*/10 * * * *", d.PreviewStore); err != nil {
		return fmt.Errorf("schedule preview session purge: %w", err)
	}
	if err := d.Scheduler.AddPurgeJob("rate_limiters", "*/10 * * * *", d.RateLimiter); err != nil {
		return fmt.Errorf("schedule rate limiter purge: %w", err)
	}

	if d.Config.Observability.MetricsEnabled {
		m, err := middleware.NewPrometheusMiddleware(d.Registry)
		if err != nil {
			return fmt.Errorf("register http metrics: %w", err)
		}
		d.HTTPMetrics = m
	}

	d.Logger.Info("services initialized")
	return nil
}

func (d *Dependencies) initHandlers() {
	d.CategoryHandler = category.NewHandler(d.CategoryService, d.Logger)
	d.TransactionHandler = transaction.NewHandler(d.TransactionService, d.Logger)
	d.BudgetHandler = budget.NewHandler(d.BudgetService, d.Logger)
	d.ImportHandler = importhandler.NewImportHandler(d.ImportService, d.Config.Import.MaxUploadBytes, d.Logger)
	d.Logger.Info("handlers initialized")
}

// Routes assembles the route registration bundle.
func (d *Dependencies) Routes() httphandler.Routes {
	return httphandler.Routes{
		Logger:        d.Logger,
		Pinger:        d.DB.Pool,
		Sessions:      d.Sessions,
		SessionHeader: d.Config.Auth.SessionHeader,
		RateLimiter:   d.RateLimiter,
		Metrics:       d.HTTPMetrics,
		Gatherer:      d.Registry,
		Handlers: []httphandler.RouteRegistrar{
			d.CategoryHandler,
			d.TransactionHandler,
			d.BudgetHandler,
			d.ImportHandler,
		},
	}
}

// Cleanup closes all resources.
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
