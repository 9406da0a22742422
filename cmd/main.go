package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"notes-service/internal/handler"
	"notes-service/internal/middleware"
	"notes-service/internal/service"
	"notes-service/internal/store"
	"notes-service/pkg/config"
	"notes-service/pkg/database"
	"notes-service/pkg/jwtutil"
	"notes-service/pkg/logger"
	"notes-service/pkg/password"
	"notes-service/prometheus"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()
	log.Info("Starting notes service...", cfg.LogConfig()...)

	if cfg.JWT.UsingLegacyKey {
		log.Warn("JWT_SIGNING_KEY is not set, falling back to the built-in development key")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("Service stopped with error", zap.Error(err))
	}
	log.Info("Service stopped")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Prometheus registry
	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := prometheus.New(cfg.Metrics.Prefix, reg)

	// Database
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	log.Info("Database connection established", zap.String("driver", cfg.DB.Driver))

	st := store.New(db, metrics)
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	hasher := password.NewBcryptHasher(cfg.Auth.BcryptCost)
	if cfg.Auth.SeedEnabled {
		seeded, err := st.Seed(ctx, hasher, cfg.Auth.SeedPassword)
		if err != nil {
			return err
		}
		if seeded {
			log.Info("Seeded sample tenants and users")
		}
	}

	tokens, err := jwtutil.NewJWTUtil(jwtutil.JWTConfig{
		SigningKey:      cfg.JWT.SigningKey,
		ExpirationHours: cfg.JWT.ExpirationHours,
	})
	if err != nil {
		return err
	}

	auth, err := service.NewAuthService(st, hasher, tokens, log, metrics)
	if err != nil {
		return err
	}

	e := handler.NewRouter(handler.Deps{
		Auth:         auth,
		Notes:        service.NewNoteService(st, log, metrics),
		Tenants:      service.NewTenantService(st, log, metrics),
		Tokens:       tokens,
		DB:           st,
		LoginLimiter: middleware.NewClientRateLimiter(cfg.RateLimit.LoginRPS, cfg.RateLimit.LoginBurst),
		Metrics:      metrics,
		Gatherer:     reg,
		Logger:       log,
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

