package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"sort"

	"github.com/rgehrsitz/fincalc/internal/calculator"
	"github.com/rgehrsitz/fincalc/internal/config"
	"github.com/rgehrsitz/fincalc/internal/rates"
	"github.com/rgehrsitz/fincalc/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every command
type globalFlags struct {
	configFile string
	envFile    string
	ratesFile  string
	logLevel   string
}

// app holds the wired dependencies for one command invocation
type app struct {
	cfg       *config.AppConfig
	logger    *logrus.Logger
	store     rates.Store
	registry  *calculator.Registry
	refresher *rates.Refresher
	closers   []func() error
}

// Close releases connections in reverse order of opening
func (a *app) Close() {
	if a.refresher != nil {
		a.refresher.Stop()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warnf("close: %v", err)
		}
	}
}

// loadConfig reads the config file, .env and environment, then applies flag overrides
func (g *globalFlags) loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load(g.configFile, g.envFile)
	if err != nil {
		return nil, err
	}
	if g.ratesFile != "" {
		cfg.Rates.File = g.ratesFile
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newApp wires the rate store, the optional cache and the registry
func (g *globalFlags) newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := cfg.NewLogger()
	logger.SetOutput(cmd.ErrOrStderr())

	a := &app{cfg: cfg, logger: logger}
	deps := calculator.Deps{Logger: logger}

	if cfg.Database.URL != "" {
		pg, err := storage.OpenPostgres(ctx, cfg.Database.URL, cfg.Database.MaxOpenConns)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		if err := pg.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
		a.store = pg
		deps.Loans = pg
		logger.Debug("using postgres rate store")
	} else {
		fs, err := rates.OpenFileStore(cfg.Rates.File)
		if err != nil {
			return nil, err
		}
		a.store = fs
		logger.Debugf("using rate file %s", cfg.Rates.File)
	}

	if n, err := rates.Seed(ctx, a.store, rates.Defaults()); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to seed rates: %w", err)
	} else if n > 0 {
		logger.Infof("seeded %d default rates", n)
	}

	if cfg.Redis.Addr != "" {
		redisCache := rates.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		a.closers = append(a.closers, redisCache.Close)
		if err := redisCache.Ping(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("redis unavailable: %w", err)
		}
		cached := rates.NewCachedStore(a.store, redisCache, cfg.Redis.TTL)
		a.store = cached

		if cfg.Rates.Refresh != "" {
			keys, err := refreshKeys(ctx, a.store)
			if err != nil {
				a.Close()
				return nil, err
			}
			a.refresher, err = rates.NewRefresher(cached, cfg.Rates.Refresh, keys, logger)
			if err != nil {
				a.Close()
				return nil, err
			}
		}
	}

	deps.Resolver = rates.NewResolver(a.store)
	a.registry = calculator.NewRegistry(deps)
	return a, nil
}

// refreshKeys is every well-known key plus any custom key already stored
func refreshKeys(ctx context.Context, store rates.Store) ([]string, error) {
	seen := make(map[string]bool)
	keys := make([]string, 0, len(rates.KnownKeys()))
	for _, k := range rates.KnownKeys() {
		seen[k] = true
		keys = append(keys, k)
	}
	entries, err := store.ListRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rates: %w", err)
	}
	for _, e := range entries {
		if !seen[e.Key] {
			seen[e.Key] = true
			keys = append(keys, e.Key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fincalc %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.GoVersion
	}
	return ""
}

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "fincalc",
		Short:         "Personal finance calculator CLI",
		Long:          "Loan, investment, insurance and retirement calculators with a rate store, HTTP API and comparisons",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configFile, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "dotenv file, ignored when missing")
	root.PersistentFlags().StringVar(&g.ratesFile, "rates-file", "", "YAML rate file (overrides config)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (overrides config)")

	root.AddCommand(
		listCmd(),
		calcCmd(g),
		batchCmd(g),
		compareCmd(g),
		serveCmd(g),
		ratesCmd(g),
		versionCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
