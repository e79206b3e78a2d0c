package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/utafrali/commerce-auth/internal/auth"
	"github.com/utafrali/commerce-auth/internal/config"
	"github.com/utafrali/commerce-auth/internal/event"
	handler "github.com/utafrali/commerce-auth/internal/handler/http"
	"github.com/utafrali/commerce-auth/internal/password"
	"github.com/utafrali/commerce-auth/internal/repository/postgres"
	"github.com/utafrali/commerce-auth/internal/service"
	"github.com/utafrali/commerce-auth/migrations"
	"github.com/utafrali/commerce-auth/pkg/database"
	"github.com/utafrali/commerce-auth/pkg/health"
	"github.com/utafrali/commerce-auth/pkg/httputil"
	pkgkafka "github.com/utafrali/commerce-auth/pkg/kafka"
	"github.com/utafrali/commerce-auth/pkg/middleware"
)

// App wires together all dependencies and runs the auth service.
type App struct {
	cfg        *config.Config
	log        *slog.Logger
	pool       *pgxpool.Pool
	producer   *pkgkafka.Producer
	httpServer *http.Server
}

// New creates the application, initializing all dependencies.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	httputil.SetEnvironment(cfg.Environment)

	pgCfg := cfg.PostgresConfig()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	log.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "auth")

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Info("database migrations completed")

	var producer *pkgkafka.Producer
	var events service.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), log)
		events = event.NewProducer(producer, log)
		log.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		log.Warn("no kafka brokers configured, event publishing disabled")
	}

	codec := auth.NewTokenCodec(
		cfg.JWTAccessSecret,
		cfg.JWTRefreshSecret,
		cfg.JWTAccessExpiry,
		cfg.JWTRefreshExpiry,
	)
	hasher := password.NewHasher(cfg.BcryptCost)
	userRepo := postgres.NewUserRepository(pool)
	authService := service.NewAuthService(userRepo, codec, hasher, events, log)

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if producer != nil {
		healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return producer.Ping(ctx)
		})
	}

	router := handler.NewRouter(authService, codec, healthHandler, log, middleware.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Environment:    cfg.Environment,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:        cfg,
		log:        log,
		pool:       pool,
		producer:   producer,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.log.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown stops components in order: drain HTTP, close the producer,
// then close the pool.
func (a *App) Shutdown() error {
	a.log.Info("shutting down")

	var errs []error

	httpCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.log.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.pool.Close()

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
