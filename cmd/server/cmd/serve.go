package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/guestlist/server/internal/api"
	"github.com/guestlist/server/internal/api/handlers"
	"github.com/guestlist/server/internal/config"
	"github.com/guestlist/server/internal/domain/registration"
	"github.com/guestlist/server/internal/metrics"
	"github.com/guestlist/server/internal/storage/memory"
	"github.com/guestlist/server/internal/storage/postgres"
	"github.com/guestlist/server/internal/telemetry"
)

// Flags that override the configured listen address.
var (
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the guestlist HTTP server",
	Long: `Start the guestlist HTTP server and accept API requests.

Configuration comes from environment variables, optionally overlaid by
a --config YAML file. Storage is postgres by default; set
STORAGE_DRIVER=memory to run without a database. The process drains
in-flight requests on SIGINT and SIGTERM before exiting.

Examples:
  server serve
  server serve --host 127.0.0.1 --port 9090
  STORAGE_DRIVER=memory server serve
  server serve --config /etc/guestlist/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "bind address (overrides SERVER_HOST)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "listen port (overrides SERVER_PORT)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("driver", cfg.Storage.Driver).Msg("starting guestlist server")

	metrics.Init(Version, GitCommit, BuildDate)

	tracingShutdown, err := telemetry.InitTracing(context.Background(), cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("tracing init failed: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracingShutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	store, pinger, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(cfg, logger, store, pinger, Version, GitCommit, BuildDate),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return serveUntilSignalled(server, logger)
}

// openStore builds the storage backend named by the config. The
// returned close function releases whatever the backend holds open.
func openStore(cfg config.Config, logger zerolog.Logger) (registration.Store, handlers.Pinger, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := openPool(cfg.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		pg, err := postgres.NewStore(pool)
		if err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("storage init failed: %w", err)
		}
		// Pool gauges are only meaningful on postgres.
		metrics.Registry.MustRegister(metrics.NewPoolStatsCollector(pool))
		return pg, pg, pool.Close, nil

	case config.DriverMemory:
		logger.Warn().Msg("using in-memory storage, all state is lost on restart")
		mem := memory.NewStore()
		return mem, mem, func() {}, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func openPool(dbCfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dbCfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if dbCfg.MaxConnections > 0 {
		poolCfg.MaxConns = int32(dbCfg.MaxConnections)
	}
	if dbCfg.MaxIdle > 0 {
		poolCfg.MinConns = int32(dbCfg.MaxIdle)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return pool, nil
}

func loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return config.Config{}, err
	}

	// Logging flags win over config and env.
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	return cfg, nil
}

// serveUntilSignalled runs the server until SIGINT or SIGTERM, then
// drains in-flight requests for up to ten seconds.
func serveUntilSignalled(server *http.Server, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		failed <- server.ListenAndServe()
	}()

	select {
	case err := <-failed:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}
