// Package config loads chit-fund-analyzer settings from a YAML file,
// CHIT_-prefixed environment variables and built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "CHIT"

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"     yaml:"server"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
	Cache     CacheConfig     `mapstructure:"cache"      yaml:"cache"`
	Storage   StorageConfig   `mapstructure:"storage"    yaml:"storage"`
	Solver    SolverConfig    `mapstructure:"solver"     yaml:"solver"`
	Scenario  ScenarioConfig  `mapstructure:"scenario"   yaml:"scenario"`
	Advisor   AdvisorConfig   `mapstructure:"advisor"    yaml:"advisor"`
	Logging   LoggingConfig   `mapstructure:"logging"    yaml:"logging"`
}

type ServerConfig struct {
	Host            string   `mapstructure:"host"             yaml:"host"`
	Port            int      `mapstructure:"port"             yaml:"port"`
	ReadTimeoutSec  int      `mapstructure:"read_timeout_sec"  yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `mapstructure:"write_timeout_sec" yaml:"write_timeout_sec"`
	IdleTimeoutSec  int      `mapstructure:"idle_timeout_sec"  yaml:"idle_timeout_sec"`
	ShutdownSec     int      `mapstructure:"shutdown_sec"     yaml:"shutdown_sec"`
	CORSOrigins     []string `mapstructure:"cors_origins"     yaml:"cors_origins"`
}

// Addr is the listen address, host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type RateLimitConfig struct {
	Enabled   bool `mapstructure:"enabled"    yaml:"enabled"`
	Capacity  int  `mapstructure:"capacity"   yaml:"capacity"`   // requests per window
	WindowSec int  `mapstructure:"window_sec" yaml:"window_sec"` // refill window
}

type CacheConfig struct {
	Provider   string `mapstructure:"provider"    yaml:"provider"` // "memory" or "redis"
	RedisAddr  string `mapstructure:"redis_addr"  yaml:"redis_addr"`
	RedisPass  string `mapstructure:"redis_pass"  yaml:"redis_pass"`
	RedisDB    int    `mapstructure:"redis_db"    yaml:"redis_db"`
	KeyPrefix  string `mapstructure:"key_prefix"  yaml:"key_prefix"`
	TTLSeconds int    `mapstructure:"ttl_seconds" yaml:"ttl_seconds"` // 0 keeps entries forever
}

type StorageConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // "memory", "sqlite3" or "postgres"
	DSN    string `mapstructure:"dsn"    yaml:"dsn"`
}

type SolverConfig struct {
	MinRate       float64 `mapstructure:"min_rate"       yaml:"min_rate"`
	MaxRate       float64 `mapstructure:"max_rate"       yaml:"max_rate"`
	ScanPoints    int     `mapstructure:"scan_points"    yaml:"scan_points"`
	Tolerance     float64 `mapstructure:"tolerance"      yaml:"tolerance"`
	MaxIterations int     `mapstructure:"max_iterations" yaml:"max_iterations"`
}

type ScenarioConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"` // 0 means one per CPU
}

type AdvisorConfig struct {
	OpenAIKey  string `mapstructure:"openai_key"  yaml:"openai_key"`
	Model      string `mapstructure:"model"       yaml:"model"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // "debug" or "info"
}

// Debug reports whether per-scenario trace logging is on.
func (l LoggingConfig) Debug() bool {
	return strings.EqualFold(l.Level, "debug")
}

// Load reads config.yaml from ./config, ~/.chit-fund-analyzer or
// /etc/chit-fund-analyzer. A missing file is not an error.
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".chit-fund-analyzer"))
	v.AddConfigPath("/etc/chit-fund-analyzer")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_sec", 15)
	v.SetDefault("server.write_timeout_sec", 15)
	v.SetDefault("server.idle_timeout_sec", 60)
	v.SetDefault("server.shutdown_sec", 10)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.capacity", 30)
	v.SetDefault("rate_limit.window_sec", 60)

	v.SetDefault("cache.provider", "memory")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_pass", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.key_prefix", "chit-fund-analyzer:")
	v.SetDefault("cache.ttl_seconds", 3600) // 1 hour

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.dsn", "chit_analyses.db")

	v.SetDefault("solver.min_rate", 1e-9)
	v.SetDefault("solver.max_rate", 1e4)
	v.SetDefault("solver.scan_points", 1200)
	v.SetDefault("solver.tolerance", 1e-12)
	v.SetDefault("solver.max_iterations", 200)

	v.SetDefault("scenario.workers", 0)

	v.SetDefault("advisor.openai_key", "")
	v.SetDefault("advisor.model", "gpt-4")
	v.SetDefault("advisor.timeout_sec", 30)

	v.SetDefault("logging.level", "info")
}

// overrideFromEnv lets the conventional OPENAI_API_KEY stand in for the
// prefixed variable.
func overrideFromEnv(cfg *Config) {
	if cfg.Advisor.OpenAIKey != "" {
		return
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Advisor.OpenAIKey = key
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
