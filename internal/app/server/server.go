package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"ams/internal/domain/attendance"
	"ams/internal/domain/audit"
	"ams/internal/domain/entitlement"
	"ams/internal/domain/holiday"
	"ams/internal/domain/identity"
	"ams/internal/domain/leave"
	"ams/internal/domain/reports"
	"ams/internal/platform/config"
	"ams/internal/platform/db"
	"ams/internal/platform/metrics"
	adminhandler "ams/internal/transport/http/handlers/admin"
	approvalhandler "ams/internal/transport/http/handlers/approval"
	attendancehandler "ams/internal/transport/http/handlers/attendance"
	authhandler "ams/internal/transport/http/handlers/auth"
	leavehandler "ams/internal/transport/http/handlers/leave"
	"ams/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
}

// New wires stores, services and the HTTP router. Migrations and seeding run
// here so tests and main share one boot path.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	identityStore := identity.NewStore(pool)
	entitlementStore := entitlement.NewStore(pool)
	holidayStore := holiday.NewStore(pool)
	attendanceStore := attendance.NewStore(pool)
	leaveStore := leave.NewStore(pool)

	identitySvc := identity.NewService(identityStore)
	entitlementSvc := entitlement.NewService(entitlementStore)
	holidaySvc := holiday.NewService(holidayStore)
	attendanceSvc := attendance.NewService(attendanceStore, holidaySvc, entitlementSvc, identityStore)
	leaveSvc := leave.NewService(leaveStore, entitlementSvc, identityStore)
	auditSvc := audit.New(pool)
	reportsSvc := reports.New(pool)
	collector := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSAllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(collector))
	}
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(collector.Snapshot())
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(identityStore, cfg.JWTSecret, cfg.TokenTTL).RegisterRoutes(r)
		attendancehandler.NewHandler(attendanceSvc, auditSvc).RegisterRoutes(r)
		leavehandler.NewHandler(leaveSvc, auditSvc).RegisterRoutes(r)
		approvalhandler.NewHandler(attendanceSvc, leaveSvc, identitySvc, entitlementSvc, auditSvc).RegisterRoutes(r)
		adminhandler.NewHandler(identitySvc, entitlementSvc, holidaySvc, reportsSvc, auditSvc).RegisterRoutes(r)
	})

	return &App{Config: cfg, DB: pool, Router: router}, nil
}

func (a *App) Close() {
	a.DB.Close()
}

func Run() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	app, err := New(context.Background(), cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}
