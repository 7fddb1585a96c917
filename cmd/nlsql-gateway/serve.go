package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/sipico/nlsql-gateway/internal/admin"
	"github.com/sipico/nlsql-gateway/internal/api"
	"github.com/sipico/nlsql-gateway/internal/auth"
	"github.com/sipico/nlsql-gateway/internal/config"
	"github.com/sipico/nlsql-gateway/internal/logging"
	"github.com/sipico/nlsql-gateway/internal/metrics"
	"github.com/sipico/nlsql-gateway/internal/oracle"
	"github.com/sipico/nlsql-gateway/internal/query"
	"github.com/sipico/nlsql-gateway/internal/ratelimit"
	"github.com/sipico/nlsql-gateway/internal/sqlguard"
	"github.com/sipico/nlsql-gateway/internal/storage"
	"github.com/sipico/nlsql-gateway/internal/translate"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

// runServe loads configuration from the environment and serves until
// SIGINT or SIGTERM.
func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, levelVar, err := logging.New(cfg.LogLevel, os.Stdout)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	app, err := newApp(ctx, cfg, logger, levelVar)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return err
	}
	defer app.close()

	return app.serve(ctx)
}

// app holds the wired gateway components.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    storage.Storage
	limiter  *ratelimit.Limiter
	api      *http.Server
	internal *http.Server
}

// newApp wires storage, the query pipeline and both HTTP servers.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, levelVar *slog.LevelVar) (*app, error) {
	reg := prometheus.NewRegistry()
	if err := metrics.Init(reg, version); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	store, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	denylist, err := sqlguard.LoadDenylist(cfg.DenylistPath)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	oracleClient := oracle.NewClient(cfg.OracleAPIKey,
		oracle.WithBaseURL(cfg.OracleBaseURL),
		oracle.WithModel(cfg.OracleModel),
		oracle.WithHTTPClient(&http.Client{
			Timeout: 2 * translate.DefaultAttemptTimeout,
			Transport: &oracle.LoggingTransport{
				Transport: http.DefaultTransport,
				Logger:    logger,
				Prefix:    "oracle",
			},
		}),
	)
	translator := translate.New(oracleClient, translate.WithLogger(logger))
	service := query.NewService(translator, sqlguard.New(denylist), store, logger)

	limiter := ratelimit.New(ratelimit.Config{
		Capacity:   cfg.RateLimitCapacity,
		RefillRate: cfg.RateLimitRefillPerSec,
	})

	router := api.NewRouter(
		api.NewHandler(service, store, logger),
		auth.Middleware(auth.NewRegistry(cfg.APIKeys), logger),
		ratelimit.Middleware(limiter, logger),
		logger,
	)

	adminHandler := admin.NewHandler(reg, levelVar, limiter, logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		limiter: limiter,
		api: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		internal: &http.Server{
			Addr:              cfg.MetricsListenAddr,
			Handler:           adminHandler.NewRouter(),
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}, nil
}

// serve runs both listeners and the bucket sweeper until ctx is done or a
// listener fails, then shuts down gracefully.
func (a *app) serve(ctx context.Context) error {
	if a.cfg.RateLimitSweepInterval > 0 {
		go a.limiter.Run(ctx, a.cfg.RateLimitSweepInterval, a.logger)
	}

	errCh := make(chan error, 2)
	for _, srv := range []*http.Server{a.api, a.internal} {
		go func(srv *http.Server) {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("listen %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	a.logger.Info("gateway started",
		"version", version,
		"listen_addr", a.cfg.ListenAddr,
		"metrics_listen_addr", a.cfg.MetricsListenAddr,
		"api_keys", len(a.cfg.APIKeys),
	)

	var serveErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down")
	case serveErr = <-errCh:
		a.logger.Error("server failed", "error", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range []*http.Server{a.api, a.internal} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("shutdown error", "addr", srv.Addr, "error", err)
		}
	}
	return serveErr
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close storage", "error", err)
	}
}
