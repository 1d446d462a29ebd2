package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/Clark-Hu/imdb-titles-api/internal/cache"
	"github.com/Clark-Hu/imdb-titles-api/internal/config"
	httpserver "github.com/Clark-Hu/imdb-titles-api/internal/http"
	"github.com/Clark-Hu/imdb-titles-api/internal/logging"
	"github.com/Clark-Hu/imdb-titles-api/internal/repository"
	"github.com/Clark-Hu/imdb-titles-api/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "imdb-titles-api",
		Usage: "HTTP API over the IMDb title and rating tables",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a dotenv config file",
				Sources: cli.EnvVars("CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error (overrides LOG_LEVEL)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "bootstrap",
				Usage:  "Create the title tables and indexes if missing, then exit",
				Action: runBootstrap,
			},
		},
		Action: runServer,
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "imdb-titles-api: %v\n", err)
		os.Exit(1)
	}
}

func loadRuntime(c *cli.Command) (config.Config, *zap.Logger, error) {
	root := c.Root()
	cfg, err := config.Load(root.String("config"))
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("config error: %w", err)
	}
	if level := root.String("log-level"); level != "" {
		cfg.LogLevel = level
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

func connectStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (*store.Store, error) {
	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		ConnectRetries:         cfg.DBConnectRetries,
		ConnectRetryDelay:      time.Duration(cfg.DBConnectRetryDelaySecs) * time.Second,
		Logger:                 logger,
	}
	return store.Connect(ctx, cfg.DatabaseURL(), storeOpts)
}

func runBootstrap(ctx context.Context, c *cli.Command) error {
	cfg, logger, err := loadRuntime(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	st, err := connectStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer st.Close()

	return st.EnsureSchema(ctx)
}

func runServer(ctx context.Context, c *cli.Command) error {
	cfg, logger, err := loadRuntime(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	st, err := connectStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer st.Close()

	if cfg.DBBootstrapSchema {
		if err := st.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}

	repo := repository.New(st)
	var movies httpserver.MovieStore = repo.Movies
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		movies = cache.New(repo.Movies, client, time.Duration(cfg.MovieCacheTTLSecs)*time.Second, logger)
		logger.Info("movie cache enabled", zap.Int("ttl_secs", cfg.MovieCacheTTLSecs))
	}
	server := httpserver.New(cfg, st, movies, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	var serveErr error
	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			serveErr = err
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("graceful shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
	return serveErr
}
