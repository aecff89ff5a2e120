package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the CHMS core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
	Security SecurityConfig `yaml:"security"`
	Reports  ReportsConfig  `yaml:"reports"`
}

// SiteConfig identifies the congregation this instance serves.
type SiteConfig struct {
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains authentication and lockout settings.
type SecurityConfig struct {
	// SessionTTLHours is how long a session token stays valid after login.
	SessionTTLHours int `yaml:"session_ttl_hours"`

	// LockoutThreshold is the number of consecutive failed logins that
	// triggers a temporary account lock.
	LockoutThreshold int `yaml:"lockout_threshold"`

	// LockoutMinutes is how long a locked account stays locked.
	LockoutMinutes int `yaml:"lockout_minutes"`

	// BootstrapAdmin controls whether a default administrator account is
	// created on first run when the user table is empty. The default
	// credentials are well known and must be changed immediately.
	BootstrapAdmin bool `yaml:"bootstrap_admin"`
}

// ReportsConfig contains report rendering settings.
type ReportsConfig struct {
	OrganisationName string `yaml:"organisation_name"`
	CurrencySymbol   string `yaml:"currency_symbol"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: CHMS_SECTION_KEY
// For example: CHMS_DATABASE_PATH, CHMS_API_PORT
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			Name:     "Community Church",
			Timezone: "UTC",
		},
		Database: DatabaseConfig{
			Path:        "./data/chms.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			SessionTTLHours:  24,
			LockoutThreshold: 5,
			LockoutMinutes:   30,
			BootstrapAdmin:   true,
		},
		Reports: ReportsConfig{
			OrganisationName: "Community Church",
			CurrencySymbol:   "$",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: CHMS_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CHMS_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("CHMS_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("CHMS_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}
	if v := os.Getenv("CHMS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CHMS_BOOTSTRAP_ADMIN"); v != "" {
		cfg.Security.BootstrapAdmin = v == "true" || v == "1"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Security.SessionTTLHours < 1 {
		errs = append(errs, "security.session_ttl_hours must be at least 1")
	}
	if c.Security.LockoutThreshold < 1 {
		errs = append(errs, "security.lockout_threshold must be at least 1")
	}
	if c.Security.LockoutMinutes < 1 {
		errs = append(errs, "security.lockout_minutes must be at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// SessionTTL returns the configured session lifetime as a Duration.
func (c *SecurityConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// LockoutWindow returns the configured lockout duration as a Duration.
func (c *SecurityConfig) LockoutWindow() time.Duration {
	return time.Duration(c.LockoutMinutes) * time.Minute
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
