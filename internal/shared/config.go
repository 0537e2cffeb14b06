package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Storage  StorageConfig  `toml:"storage"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	OMDb     OMDbConfig     `toml:"omdb"`
	Cache    CacheConfig    `toml:"cache"`
	Log      LogConfig      `toml:"log"`
}

// StorageConfig selects the data backend.
type StorageConfig struct {
	Backend  string `toml:"backend"`
	JSONPath string `toml:"json_path"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// OMDbConfig contains metadata lookup settings.
type OMDbConfig struct {
	BaseURL               string  `toml:"base_url"`
	APIKey                string  `toml:"api_key"`
	TimeoutSeconds        int     `toml:"timeout_seconds"`
	RateLimit             float64 `toml:"rate_limit"`
	BreakerFailures       uint32  `toml:"breaker_failures"`
	BreakerTimeoutSeconds int     `toml:"breaker_timeout_seconds"`
}

// Timeout returns the HTTP client timeout for lookups.
func (o OMDbConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// CacheConfig contains the optional Redis lookup cache settings.
type CacheConfig struct {
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	TTLHours      int    `toml:"ttl_hours"`
}

// TTL returns how long cached lookups are kept.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("%w: database.path is required for the sqlite backend", ErrInvalidConfig)
		}
	case BackendJSON:
		if c.Storage.JSONPath == "" {
			return fmt.Errorf("%w: storage.json_path is required for the json backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, c.Storage.Backend)
	}

	if c.OMDb.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: omdb.timeout_seconds must be positive", ErrInvalidConfig)
	}
	return nil
}

// ApplyEnv overrides config values from MOVIWEB_* environment variables.
func (c *Config) ApplyEnv() {
	c.OMDb.APIKey = GetEnv("MOVIWEB_OMDB_API_KEY", c.OMDb.APIKey)
	c.Storage.Backend = strings.ToLower(GetEnv("MOVIWEB_STORAGE_BACKEND", c.Storage.Backend))
	c.Storage.JSONPath = GetEnv("MOVIWEB_JSON_PATH", c.Storage.JSONPath)
	c.Database.Path = GetEnv("MOVIWEB_DATABASE_PATH", c.Database.Path)
	c.Cache.RedisAddr = GetEnv("MOVIWEB_REDIS_ADDR", c.Cache.RedisAddr)
	c.Log.Level = GetEnv("MOVIWEB_LOG_LEVEL", c.Log.Level)
}

// GetEnv returns the value of key, or defaultValue when it is unset or empty.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
