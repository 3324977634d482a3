package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/sundayezeilo/usermgmt/db/migrations"
	"github.com/sundayezeilo/usermgmt/hashid"
	"github.com/sundayezeilo/usermgmt/internal/config"
	db "github.com/sundayezeilo/usermgmt/internal/db/sqlc"
	"github.com/sundayezeilo/usermgmt/internal/server"
	"github.com/sundayezeilo/usermgmt/internal/user"
)

// App holds the application dependencies and configuration.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	DBPool  *pgxpool.Pool
	Codec   *hashid.Codec
	Server  *server.Server
	Handler *user.Handler
}

// New initializes and returns a new App instance with all dependencies wired up.
func New(ctx context.Context) (*App, error) {
	if err := loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.App.LogLevel)

	logger.Info("starting application",
		"env", cfg.App.Environment,
		"version", cfg.Observability.ServiceVersion,
	)

	// Built before the database so a bad salt fails fast.
	codec, err := NewCodec(cfg.Hash)
	if err != nil {
		return nil, err
	}

	dbPool, err := connectDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := migrateSchema(dbPool, logger); err != nil {
			dbPool.Close()
			return nil, err
		}
	}

	store := db.NewStore(dbPool)
	repo := user.NewRepository(store)
	svc := user.NewService(repo, &user.ServiceConfig{
		BcryptCost: cfg.Auth.BcryptCost,
	})
	handler := user.NewHandler(user.HandlerConfig{
		Service: svc,
		Codec:   codec,
		Logger:  logger,
	})

	srv := server.New(cfg, logger, handler)

	logger.Info("application initialized",
		"port", cfg.Server.Port,
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		DBPool:  dbPool,
		Codec:   codec,
		Server:  srv,
		Handler: handler,
	}, nil
}

// NewCodec builds the user ID codec with the service-wide alphabet and
// minimum length. Only the salt is configurable.
func NewCodec(cfg config.HashConfig) (*hashid.Codec, error) {
	codec, err := hashid.New(hashid.Config{
		Salt:      cfg.Salt,
		Alphabet:  hashid.DefaultAlphabet,
		MinLength: hashid.DefaultMinLength,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build id codec: %w", err)
	}
	return codec, nil
}

// Start starts the application server.
func (a *App) Start(ctx context.Context) error {
	a.Logger.Info("server starting",
		"port", a.Config.Server.Port,
	)

	if err := a.Server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.Logger.Info("shutting down application")

	if a.DBPool != nil {
		a.DBPool.Close()
		a.Logger.Info("database connection closed")
	}

	return nil
}

// loadEnv loads .env file only in non-production environments.
func loadEnv() error {
	env := os.Getenv("APP_ENV")
	if env == "development" || env == "test" {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("no .env file found.")
		}
	}
	return nil
}

// setupLogger creates a structured logger based on the log level.
func setupLogger(level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// connectDatabase establishes a connection to the PostgreSQL database.
func connectDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Set pool configuration
	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns

	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pingWithRetry(ctx, pool, cfg.Database.ConnectTimeout, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established")

	return pool, nil
}

// migrateSchema brings the database schema up to the embedded version.
func migrateSchema(pool *pgxpool.Pool, logger *slog.Logger) error {
	version, err := migrations.Up(pool)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("database schema up to date", "version", version)
	return nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// pingWithRetry pings p with exponential backoff until it answers or
// timeout elapses.
func pingWithRetry(ctx context.Context, p pinger, timeout time.Duration, logger *slog.Logger) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = timeout

	attempt := 0
	op := func() error {
		attempt++
		return p.Ping(ctx)
	}
	notify := func(err error, next time.Duration) {
		logger.Warn("database not ready, retrying",
			"attempt", attempt,
			"retry_in", next.String(),
			"error", err.Error(),
		)
	}

	return backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify)
}
