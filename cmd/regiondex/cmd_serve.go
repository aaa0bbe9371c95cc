package main

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yairfalse/regiondex/internal/catalog"
	"github.com/yairfalse/regiondex/internal/daemon"
	"github.com/yairfalse/regiondex/internal/loader"
	"github.com/yairfalse/regiondex/internal/policy"
	"github.com/yairfalse/regiondex/internal/query"
	"github.com/yairfalse/regiondex/internal/server"
	"github.com/yairfalse/regiondex/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func (c *cli) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve catalog queries over JSON RPC",
		Long: `Run the regiondex RPC server.

The catalog is loaded at startup and refreshed in the background on the
configured interval. Refreshes never block queries: each request sees
one complete snapshot.

Endpoints:
- POST /api/v1/rpc  JSON RPC ({method, params, id})
- GET  /health      liveness and catalog state
- GET  /metrics     Prometheus metrics`,
		Example: `  regiondex serve
  regiondex serve --config regiondex.toml --addr :9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				c.cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address (overrides server.addr)")
	return cmd
}

func (c *cli) runServe(ctx context.Context) error {
	cfg := c.cfg

	provider, err := telemetry.NewProvider(ctx, cfg.OTEL)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	cache, err := c.openCache()
	if err != nil {
		return err
	}
	if cache != nil {
		defer func() { _ = cache.Close() }()
	}

	ld := c.newLoader(cache, loader.WithRecorder(provider))
	ds, err := ld.Load(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	store := catalog.NewStore(ds)

	engine := query.NewEngine(store,
		query.WithTracer(provider.Tracer()),
		query.WithRecorder(provider),
		query.WithLogger(c.logger),
	)

	refresher, err := daemon.NewDaemon(daemon.Config{Interval: cfg.Data.RefreshInterval}, ld, store, c.logger)
	if err != nil {
		return err
	}

	handler := &server.RPCHandler{Engine: engine, Refresher: refresher}
	if cfg.Policy.Path != "" {
		pol, err := policy.LoadFile(ctx, cfg.Policy.Path, c.logger)
		if err != nil {
			return err
		}
		handler.Policy = pol
	}

	srv := server.New(server.Config{
		Handler: handler,
		Metrics: provider.MetricsHandler(),
		Logger:  c.logger,
	})

	log.Info().
		Str("addr", cfg.Server.Addr).
		Str("source", string(ds.Source)).
		Int("regions", len(ds.Regions)).
		Dur("refresh_interval", cfg.Data.RefreshInterval).
		Bool("policy", handler.Policy != nil).
		Msg("regiondex starting")

	var g run.Group
	{
		g.Add(func() error {
			return srv.Listen(cfg.Server.Addr)
		}, func(error) {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server shutdown failed")
			}
		})
	}
	{
		refreshCtx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			return refresher.Start(refreshCtx)
		}, func(error) {
			cancel()
		})
	}
	g.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))

	err = g.Run()
	var sig run.SignalError
	if errors.As(err, &sig) {
		log.Info().Str("signal", sig.Signal.String()).Msg("shutting down")
		return nil
	}
	return err
}
