package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pathway/fastdeps/internal/analyzer"
	"github.com/pathway/fastdeps/internal/cache"
	"github.com/pathway/fastdeps/internal/config"
	"github.com/pathway/fastdeps/internal/logging"
	"github.com/pathway/fastdeps/internal/resolver"
	"github.com/pathway/fastdeps/internal/version"
)

var (
	rootFlag         string
	workersFlag      int
	noCacheFlag      bool
	cachePathFlag    string
	internalOnlyFlag bool
	formatFlag       string
	logLevelFlag     string
	logFormatFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "fastdeps",
	Short: "fastdeps - execution-free Python dependency analysis",
	Long: `fastdeps analyzes the import structure of a Python codebase without
executing any of it. It scans files in parallel, resolves imports against
the project layout, and reports the dependency graph, import cycles, and
external dependencies.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("fastdeps version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "",
		"Analysis root for module names (default: the target directory)")
	rootCmd.PersistentFlags().IntVar(&workersFlag, "workers", 0,
		"Scan worker count (default: number of CPUs)")
	rootCmd.PersistentFlags().BoolVar(&noCacheFlag, "no-cache", false,
		"Disable the scan cache for this run")
	rootCmd.PersistentFlags().StringVar(&cachePathFlag, "cache-path", "",
		"Scan cache database path (default: <root>/.fastdeps/scan.db)")
	rootCmd.PersistentFlags().BoolVar(&internalOnlyFlag, "internal-only", false,
		"Suppress the external-dependency report")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "",
		"Output format: text, json, yaml, or dot (default: text)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: human or json")
}

// targetArg returns the positional target, defaulting to the current
// directory.
func targetArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// loadConfig resolves the effective configuration for a target.
// Precedence: flags > FASTDEPS_* environment > config file > defaults.
func loadConfig(cmd *cobra.Command, target string) (*config.Config, string, error) {
	cfgRoot := rootFlag
	if cfgRoot == "" {
		cfgRoot = target
		if info, err := os.Stat(target); err == nil && !info.IsDir() {
			cfgRoot = filepath.Dir(target)
		}
	}
	cfgRoot, err := filepath.Abs(cfgRoot)
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.LoadConfig(cfgRoot)
	if err != nil {
		return nil, "", err
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Scan.Workers = workersFlag
	}
	if noCacheFlag {
		cfg.Cache.Enabled = false
	}
	if flags.Changed("cache-path") {
		cfg.Cache.Path = cachePathFlag
	}
	if internalOnlyFlag {
		cfg.Resolve.InternalOnly = true
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevelFlag
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = logFormatFlag
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, cfgRoot, nil
}

func newLogger(cfg *config.Config) *logging.Logger {
	format := logging.HumanFormat
	if cfg.Logging.Format == "json" {
		format = logging.JSONFormat
	}
	return logging.NewLogger(logging.Config{
		Format: format,
		Level:  logging.ParseLevel(cfg.Logging.Level),
	})
}

// newContext returns a context cancelled by Ctrl-C, so an interrupted
// run still reports its partial result.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// openStore builds the scan cache stack: an in-memory LRU in front of
// the SQLite store. A disabled cache returns nil, which the analyzer
// treats as always-miss.
func openStore(cfg *config.Config, root string, logger *logging.Logger) (cache.Store, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	sqlite, err := cache.OpenSQLite(cfg.CachePath(root), logger)
	if err != nil {
		return nil, err
	}
	front, err := cache.NewMemoryFront(sqlite, cfg.Cache.MemoryItems)
	if err != nil {
		sqlite.Close()
		return nil, err
	}
	return front, nil
}

// runAnalysis is the shared driver behind the reporting commands.
func runAnalysis(cmd *cobra.Command, args []string) (*analyzer.Result, error) {
	target := targetArg(args)
	cfg, cfgRoot, err := loadConfig(cmd, target)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	store, err := openStore(cfg, cfgRoot, logger)
	if err != nil {
		return nil, err
	}
	if store != nil {
		defer store.Close()
	}

	decls, err := resolver.LoadDeclarations(filepath.Join(cfgRoot, cfg.Resolve.ExternalsFile))
	if err != nil {
		return nil, err
	}

	ctx, cancel := newContext()
	defer cancel()

	return analyzer.Analyze(ctx, analyzer.Options{
		Target:       target,
		Root:         rootFlag,
		Workers:      cfg.Scan.Workers,
		ChunkTimeout: time.Duration(cfg.Scan.ChunkTimeoutMs) * time.Millisecond,
		PrefixBytes:  cfg.Scan.PrefixBytes,
		InternalOnly: cfg.Resolve.InternalOnly,
		Store:        store,
		Declarations: decls,
	}, logger)
}
