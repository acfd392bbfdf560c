package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"

	"hrpay/internal/domain/attendance"
	"hrpay/internal/domain/audit"
	"hrpay/internal/domain/core"
	"hrpay/internal/domain/payroll"
	"hrpay/internal/platform/config"
	"hrpay/internal/platform/db"
	attendancehandler "hrpay/internal/transport/http/handlers/attendance"
	audithandler "hrpay/internal/transport/http/handlers/audit"
	authhandler "hrpay/internal/transport/http/handlers/auth"
	corehandler "hrpay/internal/transport/http/handlers/core"
	payrollhandler "hrpay/internal/transport/http/handlers/payroll"
	"hrpay/internal/transport/http/middleware"
)

// Run wires the whole application: config, database, domain services,
// router. It blocks serving HTTP until the process is killed.
func Run() {
	cfg := config.Load()

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			logger.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			logger.Error("seed failed", "err", err)
			os.Exit(1)
		}
	}

	attendanceStore := attendance.NewStore(pool)
	coreStore := core.NewStore(pool)
	payrollStore := payroll.NewStore(pool)
	auditService := audit.New(pool)

	tax := payroll.NewTaxCalculatorWithTable(cfg.TaxExemption, payroll.DefaultTaxBrackets())
	calc := payroll.NewCalculator(tax, logger)
	payrollService := payroll.NewService(payrollStore, calc, logger)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
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

	router.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.RateLimit(20, time.Minute)).
			Group(func(r chi.Router) {
				authhandler.NewHandler(pool, cfg.JWTSecret, coreStore).RegisterRoutes(r)
			})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			corehandler.NewHandler(coreStore, auditService).RegisterRoutes(r)
			attendancehandler.NewHandler(attendanceStore).RegisterRoutes(r)
			payrollhandler.NewHandler(payrollStore, payrollService, auditService).RegisterRoutes(r)
			audithandler.NewHandler(auditService).RegisterRoutes(r)
		})
	})

	logger.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	format := httplog.SchemaECS.Concise(cfg.Environment != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: format.ReplaceAttr,
	})).With(
		slog.String("app", "hrpay"),
		slog.String("env", cfg.Environment),
	)
}
