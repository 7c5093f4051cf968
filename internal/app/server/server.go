package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"threesixty/internal/domain/audit"
	"threesixty/internal/domain/auth"
	"threesixty/internal/domain/banks"
	"threesixty/internal/domain/evaluation"
	"threesixty/internal/domain/reports"
	"threesixty/internal/platform/config"
	"threesixty/internal/platform/db"
	"threesixty/internal/platform/metrics"
	"threesixty/internal/transport/http/api"
	audithandler "threesixty/internal/transport/http/handlers/audit"
	authhandler "threesixty/internal/transport/http/handlers/auth"
	bankshandler "threesixty/internal/transport/http/handlers/banks"
	evaluationshandler "threesixty/internal/transport/http/handlers/evaluations"
	reportshandler "threesixty/internal/transport/http/handlers/reports"
	"threesixty/internal/transport/http/middleware"
)

// AuditLog is the audit service as seen by the HTTP layer.
type AuditLog interface {
	audit.Recorder
	audithandler.Reader
}

// Services are the dependencies the router is built from.
type Services struct {
	Auth        *auth.Service
	Banks       *banks.Service
	Evaluations *evaluation.Service
	Reports     *reports.Service
	Audit       AuditLog
	Perms       middleware.PermissionStore
	Metrics     *metrics.Collector
	Ready       func(ctx context.Context) error
}

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
}

// New connects to the database, applies migrations and seed data and wires the router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	authStore := auth.NewStore(pool)
	bankStore := banks.NewStore(pool)
	collector := metrics.New()

	bankService := banks.NewService(bankStore)
	evaluationService := evaluation.NewService(evaluation.NewStore(pool), bankStore)

	svc := Services{
		Auth:        auth.NewService(authStore, cfg.JWTSecret, cfg.TokenTTL),
		Banks:       bankService,
		Evaluations: evaluationService,
		Reports:     reports.NewService(evaluationService, bankService, collector, cfg.ReportTimeout),
		Audit:       audit.New(pool),
		Perms:       authStore,
		Metrics:     collector,
		Ready: func(ctx context.Context) error {
			return pool.Ping(ctx)
		},
	}

	return &App{Config: cfg, DB: pool, Router: NewRouter(cfg, svc)}, nil
}

func NewRouter(cfg config.Config, svc Services) http.Handler {
	// A nil *metrics.Collector must not reach the recorder interfaces as a typed nil.
	var requestMetrics middleware.MetricsRecorder
	var submissionMetrics evaluationshandler.SubmissionRecorder
	if svc.Metrics != nil {
		requestMetrics = svc.Metrics
		submissionMetrics = svc.Metrics
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(requestMetrics))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := svc.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled && svc.Metrics != nil {
		router.With(middleware.RequirePermission(auth.PermAuditRead, svc.Perms)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, svc.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(svc.Auth).RegisterRoutes(r)
		bankshandler.NewHandler(svc.Banks, svc.Perms, svc.Audit).RegisterRoutes(r)
		evaluationshandler.NewHandler(svc.Evaluations, svc.Perms, svc.Audit, submissionMetrics).RegisterRoutes(r)
		reportshandler.NewHandler(svc.Reports, svc.Perms).RegisterRoutes(r)
		audithandler.NewHandler(svc.Audit, svc.Perms).RegisterRoutes(r)
	})

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      a.Config.ReportTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("threesixty server listening", "addr", a.Config.Addr, "env", a.Config.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
