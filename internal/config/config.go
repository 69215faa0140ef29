// Package config loads configuration for the scenario planning engine.
//
// Configuration is loaded from:
// 1. config.yaml file (optional)
// 2. Environment variables (standard names like SERVER_PORT, LOG_LEVEL)
// 3. Default values
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration structure.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Engine EngineConfig `mapstructure:"engine"`
}

// ServerConfig contains HTTP server and CORS settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// AllowedOrigins is the CORS allow-list for the demo UI origin(s).
	// UnsafeAllowAllOrigins bypasses it entirely and must never default on.
	AllowedOrigins        []string `mapstructure:"allowed_origins"`
	AllowCredentials      bool     `mapstructure:"allow_credentials"`
	UnsafeAllowAllOrigins bool     `mapstructure:"unsafe_allow_all_origins"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// EngineConfig controls the constraint engine's scheduling and
// instrumentation flags.
type EngineConfig struct {
	// UseQueuedFeatureService toggles the two-phase optimistic/deferred
	// write path. When false, callers should fall back to a direct write
	// with no containment propagation (no implementation here exercises
	// that fallback; it exists so the flag's presence matches spec.md §6).
	UseQueuedFeatureService bool `mapstructure:"use_queued_feature_service"`

	// ServiceInstrumentation enables Debug-level logging of skipped or
	// overridden optimistic writes.
	ServiceInstrumentation bool `mapstructure:"service_instrumentation"`

	// LogEventHistory enables the event bus's bounded history ring buffer.
	LogEventHistory bool `mapstructure:"log_event_history"`

	// IdleTimeout bounds how long the engine would wait for an idle
	// scheduling slot before forcing the deferred pass; carried as a
	// configured upper bound only, see engine.Config.IdleTimeout.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`

	// FallbackDelay is the timer delay that actually drives the deferred
	// pass in this port.
	FallbackDelay time.Duration `mapstructure:"fallback_delay"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/scenarioplan")

	// No prefix: standard names like SERVER_PORT, LOG_LEVEL.
	// Maps nested config: engine.fallback_delay -> ENGINE_FALLBACK_DELAY.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// config file is optional; fall through to defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks for critical configuration errors.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive")
	}
	if c.Server.UnsafeAllowAllOrigins && len(c.Server.AllowedOrigins) > 0 {
		return fmt.Errorf("server.unsafe_allow_all_origins and server.allowed_origins are mutually exclusive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.allow_credentials", true)
	v.SetDefault("server.unsafe_allow_all_origins", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("engine.use_queued_feature_service", true)
	v.SetDefault("engine.service_instrumentation", false)
	v.SetDefault("engine.log_event_history", false)
	v.SetDefault("engine.idle_timeout", "200ms")
	v.SetDefault("engine.fallback_delay", "50ms")
}
