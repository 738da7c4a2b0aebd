package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	vxhttp "github.com/LCoppers-Cloud/Vehix-sub002/internal/adapter/http"
	vxnats "github.com/LCoppers-Cloud/Vehix-sub002/internal/adapter/nats"
	otelx "github.com/LCoppers-Cloud/Vehix-sub002/internal/adapter/otel"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/adapter/postgres"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/adapter/ristretto"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/adapter/ws"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/config"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/logger"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/middleware"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/port/messagequeue"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/resilience"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/service"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	defer logCloser.Close()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"auth_enabled", cfg.Auth.Enabled,
		"sweep_interval", cfg.Integrity.SweepInterval,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---
	var metrics *otelx.Metrics
	if cfg.Telemetry.Enabled {
		shutdown, err := otelx.Init(ctx, cfg.Logging.Service, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()

		metrics, err = otelx.NewMetrics()
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	// --- PostgreSQL ---
	var pool *pgxpool.Pool
	err = resilience.Retry(ctx, cfg.Postgres.ConnectAttempts, time.Second, func(ctx context.Context) error {
		var perr error
		pool, perr = postgres.NewPool(ctx, cfg.Postgres)
		return perr
	})
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	// --- NATS (degraded mode without it) ---
	var queue messagequeue.Queue
	if q, err := vxnats.Connect(ctx, cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, events disabled", "url", cfg.NATS.URL, "error", err)
	} else {
		queue = q
		defer func() { _ = q.Close() }()
	}

	// --- Catalog cache ---
	catalogCache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	// --- Services ---
	hub := ws.NewHub()
	store := postgres.NewStore(pool)
	notifier := service.NewNotifier(queue, hub)

	authSvc := service.NewAuthService(store, &cfg.Auth)
	tenantSvc := service.NewTenantService(store)
	userSvc := service.NewUserService(store, &cfg.Auth)
	vehicleSvc := service.NewVehicleService(store, notifier)
	assignmentSvc := service.NewAssignmentService(store, &cfg.Assignment, notifier, metrics)
	stockSvc := service.NewStockService(store, notifier, metrics)
	catalogSvc := service.NewCatalogService(store, catalogCache, cfg.Cache.CatalogTTL)
	quotaSvc := service.NewQuotaService(store, metrics)
	integritySvc := service.NewIntegrityService(store, &cfg.Integrity, notifier, metrics, log)

	// --- Bootstrap ---
	bootCtx := middleware.WithTenantID(ctx, middleware.DefaultTenantID)
	if err := tenantSvc.EnsureDefault(bootCtx, middleware.DefaultTenantID); err != nil {
		return fmt.Errorf("ensure default tenant: %w", err)
	}
	if cfg.Auth.Enabled {
		if err := authSvc.SeedDefaultOwner(bootCtx, "owner@localhost", "changeme"); err != nil {
			return fmt.Errorf("seed owner: %w", err)
		}
	}

	// --- Integrity Auditor ---
	if cfg.Integrity.RunOnStartup {
		if report, err := integritySvc.Run(bootCtx); err != nil {
			slog.Warn("startup audit failed", "error", err)
		} else if !report.Clean() {
			slog.Warn("startup audit found inconsistencies",
				"duplicates", report.DuplicatesFound,
				"orphans", report.OrphansFound)
		}
	}
	go integritySvc.Sweep(ctx)

	// --- HTTP ---
	handlers := &vxhttp.Handlers{
		Auth:        authSvc,
		Tenants:     tenantSvc,
		Users:       userSvc,
		Vehicles:    vehicleSvc,
		Assignments: assignmentSvc,
		Stock:       stockSvc,
		Catalog:     catalogSvc,
		Quota:       quotaSvc,
		Integrity:   integritySvc,
		Notifier:    notifier,
		Hub:         hub,
		Store:       store,
	}

	r := chi.NewRouter()

	r.Use(vxhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(vxhttp.Logger)
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if cfg.Telemetry.Enabled {
		r.Use(otelx.HTTPMiddleware(cfg.Logging.Service))
	}
	r.Use(middleware.TenantID)
	r.Use(middleware.Auth(authSvc, cfg.Auth.Enabled))

	vxhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if queue != nil {
		_ = queue.Drain()
	}
	return srv.Shutdown(shutdownCtx)
}
