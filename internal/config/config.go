package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
}

// ServerConfig controls the websocket/http listener.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LogConfig controls zap.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// DatabaseConfig controls the optional result store.
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// SessionConfig controls match hosting.
type SessionConfig struct {
	DisconnectTimeout time.Duration `mapstructure:"disconnect_timeout"`
	BotTickInterval   time.Duration `mapstructure:"bot_tick_interval"`
}

// CatalogConfig points at the card definition files.
type CatalogConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load reads configuration from the given file (optional) with environment
// overrides under the OPTCG_ prefix.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.dsn", "")
	v.SetDefault("session.disconnect_timeout", 60*time.Second)
	v.SetDefault("session.bot_tick_interval", 250*time.Millisecond)
	v.SetDefault("catalog.dir", "cards")

	v.SetEnvPrefix("OPTCG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Database.Enabled && cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database enabled but no dsn configured")
	}
	return &cfg, nil
}
