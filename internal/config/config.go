package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/smartsample/internal/domain/fingerprint"
	"github.com/kailas-cloud/smartsample/internal/domain/selection"
	"github.com/kailas-cloud/smartsample/internal/domain/selection/strategy"
)

// Config holds the smartsample configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Selection   SelectionConfig   `yaml:"selection"`
	Fingerprint FingerprintConfig `yaml:"fingerprint"`
	Cache       CacheConfig       `yaml:"cache"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int   `yaml:"port"`
	ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
	ShutdownSec     int   `yaml:"shutdown_timeout_sec"`
	MaxBodyBytes    int64 `yaml:"max_body_bytes"`
}

// SelectionConfig holds engine defaults applied when a request leaves them unset.
type SelectionConfig struct {
	Strategy          string `yaml:"strategy"`
	WindowSize        int    `yaml:"window_size"`
	Seed              *int64 `yaml:"seed"`               // nil = 42
	DuplicateDistance *int   `yaml:"duplicate_distance"` // nil = 4, 0 disables the floor
	Workers           int    `yaml:"workers"`            // 0 = GOMAXPROCS
	// AllowLocalFiles lets API clients name files or directories on the
	// server host (paths and dir requests). Off by default.
	AllowLocalFiles bool `yaml:"allow_local_files"`
}

// FingerprintConfig holds extractor settings.
type FingerprintConfig struct {
	HashSize          int     `yaml:"hash_size"` // 8 or 16
	BrightThreshold   float64 `yaml:"bright_threshold"`
	ColorfulThreshold float64 `yaml:"colorful_threshold"`
	NeutralSpread     float64 `yaml:"neutral_spread"`
}

// CacheConfig holds fingerprint cache settings.
type CacheConfig struct {
	Size   int         `yaml:"size"`
	TTLSec int         `yaml:"ttl_sec"` // 0 = no expiry in the shared tier
	Redis  RedisConfig `yaml:"redis"`
}

// RedisConfig holds the shared cache tier connection.
type RedisConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 64 << 20
	}
	if c.Selection.Strategy == "" {
		c.Selection.Strategy = string(strategy.Default)
	}
	if c.Selection.WindowSize <= 0 {
		c.Selection.WindowSize = selection.DefaultWindowSize
	}
	if c.Selection.Seed == nil {
		seed := selection.DefaultSeed
		c.Selection.Seed = &seed
	}
	if c.Selection.DuplicateDistance == nil {
		d := selection.DefaultDuplicateDistance
		c.Selection.DuplicateDistance = &d
	}
	if c.Fingerprint.HashSize == 0 {
		c.Fingerprint.HashSize = fingerprint.DefaultHashSize
	}
	if c.Fingerprint.BrightThreshold <= 0 {
		c.Fingerprint.BrightThreshold = 128
	}
	if c.Fingerprint.ColorfulThreshold <= 0 {
		c.Fingerprint.ColorfulThreshold = 100
	}
	if c.Fingerprint.NeutralSpread <= 0 {
		c.Fingerprint.NeutralSpread = 12
	}
	if c.Cache.Size <= 0 {
		c.Cache.Size = 10000
	}
	if c.Cache.Redis.ReadinessTimeout <= 0 {
		c.Cache.Redis.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if _, err := c.Layout(); err != nil {
		return fmt.Errorf("fingerprint.hash_size: %w", err)
	}
	if err := c.SelectionOptions().Validate(); err != nil {
		return fmt.Errorf("selection: %w", err)
	}
	if c.Selection.Workers < 0 {
		return fmt.Errorf("selection.workers must be >= 0, got %d", c.Selection.Workers)
	}
	if c.Cache.TTLSec < 0 {
		return fmt.Errorf("cache.ttl_sec must be >= 0, got %d", c.Cache.TTLSec)
	}
	if c.Cache.Redis.Enabled && len(c.Cache.Redis.Addrs) == 0 {
		return fmt.Errorf("cache.redis.addrs is required when cache.redis.enabled is set")
	}
	return nil
}

// Layout returns the fingerprint layout for the configured hash size.
func (c *Config) Layout() (fingerprint.Layout, error) {
	return fingerprint.NewLayout(c.Fingerprint.HashSize)
}

// SelectionOptions returns engine options built from the selection section.
// The bucket keyer follows the configured layout.
func (c *Config) SelectionOptions() selection.Options {
	opts := selection.DefaultOptions()
	opts.Strategy = strategy.Strategy(c.Selection.Strategy)
	opts.WindowSize = c.Selection.WindowSize
	if c.Selection.Seed != nil {
		opts.Seed = *c.Selection.Seed
	}
	if c.Selection.DuplicateDistance != nil {
		opts.DuplicateDistance = *c.Selection.DuplicateDistance
	}
	if l, err := c.Layout(); err == nil {
		opts.Keyer = selection.LayoutKeyer{Layout: l}
	}
	return opts
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
