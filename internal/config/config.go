package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the bot needs from the environment. BOT_TOKEN and
// ADMIN_IDS have no defaults: without them the bot cannot run at all.
type Config struct {
	BotToken string  `envconfig:"BOT_TOKEN" required:"true"`
	AdminIDs []int64 `envconfig:"ADMIN_IDS" required:"true"`

	DataFile    string `envconfig:"DATA_FILE" default:"data.json"`
	ChatIDsFile string `envconfig:"CHAT_IDS_FILE" default:"chat_ids.json"`
	PhotosDir   string `envconfig:"PHOTOS_DIR" default:"photos"`

	BroadcastTime    string `envconfig:"BROADCAST_TIME" default:"10:00"`
	ExpiredCheckTime string `envconfig:"EXPIRED_CHECK_TIME" default:"00:00"`
	Timezone         string `envconfig:"TZ_LOCATION" default:"Europe/Moscow"`

	// Parsed from BroadcastTime / ExpiredCheckTime during Load.
	BroadcastAt    Clock `ignored:"true"`
	ExpiredCheckAt Clock `ignored:"true"`

	Log LogConfig
}

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
	Output string `envconfig:"LOG_OUTPUT" default:"stdout"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN must not be empty")
	}
	if len(cfg.AdminIDs) == 0 {
		return nil, fmt.Errorf("ADMIN_IDS must contain at least one user id")
	}
	var err error
	if cfg.BroadcastAt, err = parseClock(cfg.BroadcastTime); err != nil {
		return nil, fmt.Errorf("invalid BROADCAST_TIME: %w", err)
	}
	if cfg.ExpiredCheckAt, err = parseClock(cfg.ExpiredCheckTime); err != nil {
		return nil, fmt.Errorf("invalid EXPIRED_CHECK_TIME: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TZ_LOCATION %q: %w", cfg.Timezone, err)
	}

	return &cfg, nil
}

// parseClock parses a wall-clock time in "15:04" form.
func parseClock(v string) (Clock, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return Clock{}, err
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}
