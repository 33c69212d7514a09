package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the snapfile server configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (SNAPFILE_*)
//  2. Configuration file (YAML)
//  3. Default values
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Server contains the HTTP listener settings
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Storage configures the metadata persistence backend
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`

	// Auth configures admin credentials and token policy
	Auth AuthConfig `mapstructure:"auth" yaml:"auth"`

	// RateLimit configures per-route-class admission control
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// ServerConfig contains the HTTP listener settings.
type ServerConfig struct {
	// Host is the bind address
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the HTTP listening port
	Port int `mapstructure:"port" validate:"required,min=1,max=65535" yaml:"port"`

	// BaseURL is the externally visible URL of the service
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// UploadDir is the directory holding uploaded file bytes
	UploadDir string `mapstructure:"upload_dir" validate:"required" yaml:"upload_dir"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// RequestTimeout is the per-request timeout enforced by the router
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// StorageConfig configures the metadata persistence backend.
type StorageConfig struct {
	// Backend selects the metadata store implementation
	// Valid values: badger, memory
	Backend string `mapstructure:"backend" validate:"required,oneof=badger memory" yaml:"backend"`

	// Path is the directory for the badger database (ignored by memory)
	Path string `mapstructure:"path" yaml:"path"`
}

// AuthConfig configures admin credentials and token policy.
type AuthConfig struct {
	// AdminUsername is the single admin account name
	AdminUsername string `mapstructure:"admin_username" validate:"required" yaml:"admin_username"`

	// AdminPasswordHash is the bcrypt hash of the admin password,
	// generated by 'snapfile init'
	AdminPasswordHash string `mapstructure:"admin_password_hash" validate:"required" yaml:"admin_password_hash"`

	// JWTSecret is the symmetric token signing secret, at least 32 chars
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32" yaml:"jwt_secret"`

	// AccessTokenTTL is the access token lifetime
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl" yaml:"access_token_ttl"`

	// RefreshTokenTTL is the refresh token lifetime
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl" yaml:"refresh_token_ttl"`

	// DisabledRoutes lists path prefixes exempt from token authentication
	DisabledRoutes []string `mapstructure:"disabled_routes" yaml:"disabled_routes"`
}

// RouteRule is the admission policy for one route class.
type RouteRule struct {
	// Enabled turns limiting on for the class. A pointer distinguishes
	// "not set" from an explicit false: tuning only rpm/burst must not
	// switch the class off.
	Enabled *bool `mapstructure:"enabled" yaml:"enabled"`

	// RequestsPerMinute is the sustained refill rate
	RequestsPerMinute int `mapstructure:"requests_per_minute" validate:"omitempty,min=1" yaml:"requests_per_minute"`

	// BurstSize is the bucket capacity
	BurstSize int `mapstructure:"burst_size" validate:"omitempty,min=1" yaml:"burst_size"`
}

// IsEnabled reports whether the class is limited. Unset means enabled.
func (r RouteRule) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// RateLimitConfig configures per-route-class admission control.
type RateLimitConfig struct {
	// Auth covers login, refresh and other credential endpoints
	Auth RouteRule `mapstructure:"auth" yaml:"auth"`

	// Upload covers upload and general API traffic
	Upload RouteRule `mapstructure:"upload" yaml:"upload"`

	// Static covers reads of already-uploaded content
	Static RouteRule `mapstructure:"static" yaml:"static"`

	// DisabledRoutes lists path prefixes that bypass limiting entirely
	DisabledRoutes []string `mapstructure:"disabled_routes" yaml:"disabled_routes"`

	// IdleEviction is how long an untouched bucket survives before eviction
	IdleEviction time.Duration `mapstructure:"idle_eviction" yaml:"idle_eviction"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
// When Enabled is false, no metrics are collected.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP server are enabled
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// Load loads configuration from file, environment, and defaults.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages when the config
// file is missing.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  snapfile init\n\n"+
				"Or specify a custom config file:\n"+
				"  snapfile <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  snapfile init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path in YAML.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: the file carries the password hash and the signing secret.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the SNAPFILE_ prefix and underscores.
	// Example: SNAPFILE_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("SNAPFILE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error).
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
	)
}

// durationDecodeHook converts strings like "30s", "5m", "1h" to
// time.Duration.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to the
// current directory if the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "snapfile")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "snapfile")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for the
// init command).
func GetConfigDir() string {
	return getConfigDir()
}
