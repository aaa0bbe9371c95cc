package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yairfalse/regiondex/internal/catalog"
	"github.com/yairfalse/regiondex/internal/config"
	"github.com/yairfalse/regiondex/internal/loader"
	"github.com/yairfalse/regiondex/internal/query"
	"github.com/yairfalse/regiondex/internal/storage"
	"github.com/yairfalse/regiondex/internal/telemetry"
)

var version = "0.1.0"

// flag names
const (
	flagConfig   = "config"
	flagLogLevel = "log-level"
	flagOutput   = "output"
)

// cli carries state shared by every command.
type cli struct {
	configPath string
	logLevel   string
	output     string

	cfg    *config.Config
	logger *telemetry.Logger
}

// Execute runs the root command
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "regiondex",
		Short: "Cloud region catalog and query engine",
		Long: `regiondex - Cloud Region Catalog

Query a curated catalog of cloud regions across hyperscalers and
regional providers: nearest regions, compliance and sustainability
filters, GPU availability, coverage comparisons and aggregate stats.

Run "regiondex serve" to expose the same queries over JSON RPC.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	root.SetVersionTemplate(`regiondex {{.Version}} - Cloud Region Catalog
`)

	root.PersistentFlags().StringVarP(&c.configPath, flagConfig, "c", "", "Path to TOML config file")
	root.PersistentFlags().StringVar(&c.logLevel, flagLogLevel, "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVarP(&c.output, flagOutput, "o", formatJSON, "Output format (json, yaml)")

	root.AddCommand(c.serveCmd())
	for _, cmd := range c.queryCmds() {
		root.AddCommand(cmd)
	}
	root.AddCommand(c.policyCmd())
	root.AddCommand(c.driftCmd())

	return root
}

// setup loads configuration and configures logging before any command runs.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if err := validateFormat(c.output); err != nil {
		return err
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed(flagLogLevel) {
		cfg.Log.Level = c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	c.cfg = cfg

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen})
	c.logger = telemetry.Wrap(log.Logger)

	return nil
}

// openCache opens the on-disk payload cache if one is configured.
func (c *cli) openCache() (*storage.Cache, error) {
	if c.cfg.Data.CachePath == "" {
		return nil, nil
	}
	cache, err := storage.Open(c.cfg.Data.CachePath)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return cache, nil
}

func (c *cli) newLoader(cache *storage.Cache, opts ...loader.Option) *loader.Loader {
	opts = append(opts, loader.WithLogger(c.logger))
	if cache != nil {
		opts = append(opts, loader.WithDiskCache(cache))
	}
	return loader.New(loader.Config{
		URL:      c.cfg.Data.URL,
		Timeout:  c.cfg.Data.Timeout,
		CacheTTL: c.cfg.Data.CacheTTL,
		MaxStale: c.cfg.Data.MaxStale,
	}, opts...)
}

// store loads the dataset once for a one-shot command.
func (c *cli) store(ctx context.Context) (*catalog.Store, error) {
	cache, err := c.openCache()
	if err != nil {
		return nil, err
	}
	if cache != nil {
		defer func() { _ = cache.Close() }()
	}

	ds, err := c.newLoader(cache).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return catalog.NewStore(ds), nil
}

func (c *cli) engine(ctx context.Context) (*query.Engine, error) {
	store, err := c.store(ctx)
	if err != nil {
		return nil, err
	}
	return query.NewEngine(store, query.WithLogger(c.logger)), nil
}

// print renders v to the command's output in the selected format.
func (c *cli) print(cmd *cobra.Command, v any) error {
	return render(cmd.OutOrStdout(), c.output, v)
}
