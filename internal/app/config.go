package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the access-control backend.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Access      AccessConfig      `mapstructure:"access"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
	Realtime    RealtimeConfig    `mapstructure:"realtime"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port               int    `mapstructure:"port"`
	LogLevel           string `mapstructure:"log_level"`
	RateLimitPerMinute int    `mapstructure:"rate_limit_per_minute"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// AccessConfig tunes the decision pipeline.
type AccessConfig struct {
	// QRFreshness bounds the age of scanned QR payloads.
	QRFreshness time.Duration `mapstructure:"qr_freshness"`
	// Diagnostics includes the per-permission failure breakdown in denial
	// responses. Off unless the deployment runs readers on a trusted network;
	// the breakdown names permissions and must not reach arbitrary callers.
	Diagnostics bool `mapstructure:"diagnostics"`
}

// MaintenanceConfig controls the background cleanup scheduler.
type MaintenanceConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	RetentionDays int    `mapstructure:"retention_days"`
	LogSchedule   string `mapstructure:"log_schedule"`
	CardSchedule  string `mapstructure:"card_schedule"`
}

// MonitoringConfig enables the Prometheus metrics endpoint.
type MonitoringConfig struct {
	MetricsEnabled bool `mapstructure:"metrics_enabled"`
}

// RealtimeConfig toggles the WebSocket monitoring stream.
type RealtimeConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("ACCESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.rate_limit_per_minute", 300)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/access.sqlite")
	v.SetDefault("database.dsn", "")

	// Every key needs a default registered so AutomaticEnv can override it
	// through Unmarshal.
	for _, backend := range []string{"postgres", "mysql"} {
		v.SetDefault("database."+backend+".enabled", false)
		v.SetDefault("database."+backend+".host", "")
		v.SetDefault("database."+backend+".port", 0)
		v.SetDefault("database."+backend+".database", "")
		v.SetDefault("database."+backend+".username", "")
		v.SetDefault("database."+backend+".password", "")
	}

	v.SetDefault("access.qr_freshness", "120s")
	v.SetDefault("access.diagnostics", false)

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.retention_days", 365)
	v.SetDefault("maintenance.log_schedule", "@daily")
	v.SetDefault("maintenance.card_schedule", "@hourly")

	v.SetDefault("monitoring.metrics_enabled", true)

	v.SetDefault("realtime.enabled", true)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
