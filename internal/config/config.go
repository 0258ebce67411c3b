package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken      string        `envconfig:"BOT_TOKEN"` // empty disables the Telegram transport
	DBPath        string        `envconfig:"DB_PATH" default:"./data/ice.db"`
	UsersPath     string        `envconfig:"USERS_PATH" default:"./data/users.yaml"`
	Locale        string        `envconfig:"LOCALE" default:"en"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"300s"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr      string        `envconfig:"HTTP_ADDR" default:":8080"`

	SMTPHost     string `envconfig:"SMTP_HOST"` // empty: payloads are only logged
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser     string `envconfig:"SMTP_USER"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"ice@localhost"`
	SMTPFromName string `envconfig:"SMTP_FROM_NAME" default:"Zoe ICE"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
