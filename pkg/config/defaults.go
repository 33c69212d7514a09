package config

import (
	"strings"
	"time"
)

// Default values applied when the config file leaves fields unset.
const (
	DefaultPort            = 8080
	DefaultUploadDir       = "./uploads"
	DefaultMetadataPath    = "./data/metadata"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 60 * time.Second
	DefaultAccessTokenTTL  = time.Hour
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
	DefaultMetricsPort     = 9090
	DefaultIdleEviction    = 10 * time.Minute
)

// ApplyDefaults fills in defaults for any unset values.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyStorageDefaults(&cfg.Storage)
	applyAuthDefaults(&cfg.Auth)
	applyRateLimitDefaults(&cfg.RateLimit)
	applyMetricsDefaults(&cfg.Metrics)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = DefaultUploadDir
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
}

func applyStorageDefaults(cfg *StorageConfig) {
	if cfg.Backend == "" {
		cfg.Backend = "badger"
	}
	if cfg.Path == "" {
		cfg.Path = DefaultMetadataPath
	}
}

func applyAuthDefaults(cfg *AuthConfig) {
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = "admin"
	}
	if cfg.AccessTokenTTL == 0 {
		cfg.AccessTokenTTL = DefaultAccessTokenTTL
	}
	if cfg.RefreshTokenTTL == 0 {
		cfg.RefreshTokenTTL = DefaultRefreshTokenTTL
	}
	if cfg.DisabledRoutes == nil {
		// Logout and verify stay exempt so their responses never depend
		// on whether a valid token was presented.
		cfg.DisabledRoutes = []string{
			"/api/auth/login",
			"/api/auth/refresh",
			"/api/auth/logout",
			"/api/auth/verify",
			"/api/health",
		}
	}
}

func applyRateLimitDefaults(cfg *RateLimitConfig) {
	applyRouteRuleDefaults(&cfg.Auth, 10, 3)
	applyRouteRuleDefaults(&cfg.Upload, 60, 10)
	applyRouteRuleDefaults(&cfg.Static, 1000, 100)
	if cfg.DisabledRoutes == nil {
		cfg.DisabledRoutes = []string{
			"/health",
			"/api/health",
			"/docs",
			"/api-docs",
		}
	}
	if cfg.IdleEviction == 0 {
		cfg.IdleEviction = DefaultIdleEviction
	}
}

func applyRouteRuleDefaults(rule *RouteRule, rpm, burst int) {
	if rule.Enabled == nil {
		enabled := true
		rule.Enabled = &enabled
	}
	if rule.RequestsPerMinute == 0 {
		rule.RequestsPerMinute = rpm
	}
	if rule.BurstSize == 0 {
		rule.BurstSize = burst
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = DefaultMetricsPort
	}
}

// GetDefaultConfig returns a configuration with all defaults applied.
// Auth credentials stay empty: they are produced by 'snapfile init'.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
