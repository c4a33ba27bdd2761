package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete fastdeps configuration
type Config struct {
	Version int    `json:"version" mapstructure:"version"`
	Root    string `json:"root" mapstructure:"root"`

	Scan    ScanConfig    `json:"scan" mapstructure:"scan"`
	Cache   CacheConfig   `json:"cache" mapstructure:"cache"`
	Resolve ResolveConfig `json:"resolve" mapstructure:"resolve"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ScanConfig contains import scanning configuration
type ScanConfig struct {
	Workers        int `json:"workers" mapstructure:"workers"`
	PrefixBytes    int `json:"prefixBytes" mapstructure:"prefixBytes"`
	ChunkTimeoutMs int `json:"chunkTimeoutMs" mapstructure:"chunkTimeoutMs"`
}

// CacheConfig contains scan cache configuration
type CacheConfig struct {
	Enabled     bool   `json:"enabled" mapstructure:"enabled"`
	Path        string `json:"path" mapstructure:"path"`
	MemoryItems int    `json:"memoryItems" mapstructure:"memoryItems"`
}

// ResolveConfig contains module resolution configuration
type ResolveConfig struct {
	// ExternalsFile points at a TOML file declaring known external
	// and extra stdlib module names (fastdeps.toml by default).
	ExternalsFile string `json:"externalsFile" mapstructure:"externalsFile"`
	InternalOnly  bool   `json:"internalOnly" mapstructure:"internalOnly"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Root:    ".",
		Scan: ScanConfig{
			Workers:        runtime.NumCPU(),
			PrefixBytes:    64 * 1024,
			ChunkTimeoutMs: 30000,
		},
		Cache: CacheConfig{
			Enabled:     true,
			Path:        "", // resolved relative to the analysis root
			MemoryItems: 4096,
		},
		Resolve: ResolveConfig{
			ExternalsFile: "fastdeps.toml",
			InternalOnly:  false,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// CachePath returns the effective cache database path for a given root.
// An explicit path wins; otherwise the cache lives under <root>/.fastdeps/.
func (c *Config) CachePath(root string) string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	return filepath.Join(root, ".fastdeps", "scan.db")
}

// LoadConfig loads configuration for an analysis root.
// Precedence: environment (FASTDEPS_*) > .fastdeps/config.json > defaults.
// Command-line flags are applied on top by the caller.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("root", def.Root)
	v.SetDefault("scan.workers", def.Scan.Workers)
	v.SetDefault("scan.prefixBytes", def.Scan.PrefixBytes)
	v.SetDefault("scan.chunkTimeoutMs", def.Scan.ChunkTimeoutMs)
	v.SetDefault("cache.enabled", def.Cache.Enabled)
	v.SetDefault("cache.path", def.Cache.Path)
	v.SetDefault("cache.memoryItems", def.Cache.MemoryItems)
	v.SetDefault("resolve.externalsFile", def.Resolve.ExternalsFile)
	v.SetDefault("resolve.internalOnly", def.Resolve.InternalOnly)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.level", def.Logging.Level)

	v.SetEnvPrefix("FASTDEPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".fastdeps"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No config file is fine, defaults plus env apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to .fastdeps/config.json under root
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".fastdeps")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Scan.Workers < 0 {
		return &ConfigError{Field: "scan.workers", Message: "must be >= 0"}
	}
	if c.Scan.PrefixBytes < 0 {
		return &ConfigError{Field: "scan.prefixBytes", Message: "must be >= 0"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
