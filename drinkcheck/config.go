package drinkcheck

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log      LogConfig      `toml:"log"`
	Bot      BotConfig      `toml:"bot"`
	DB       DBConfig       `toml:"db"`
	Tracking TrackingConfig `toml:"tracking"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

// TrackingConfig scopes where drink checks are counted and how timestamps
// are displayed. An empty channel list means every channel is tracked.
type TrackingConfig struct {
	Channels        []snowflake.ID `toml:"channels"`
	DisplayTimezone string         `toml:"display_timezone"`
}

// Location resolves the display timezone, defaulting to America/Chicago
// when unset or invalid.
func (c TrackingConfig) Location() *time.Location {
	if c.DisplayTimezone != "" {
		if loc, err := time.LoadLocation(c.DisplayTimezone); err == nil {
			return loc
		}
		slog.Warn("Invalid display timezone, falling back to default",
			slog.String("timezone", c.DisplayTimezone))
	}
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		return time.UTC
	}
	return loc
}
