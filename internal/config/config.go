package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is the full runtime configuration, loaded from the environment
// (optionally seeded from a .env file).
type Config struct {
	DBPath   string `env:"NOTIFY_DB_PATH" envDefault:"notifications.db"`
	Strategy string `env:"NOTIFY_STRATEGY" envDefault:"queue" validate:"oneof=sync threaded queue"`

	EmailNotifications    bool `env:"EMAIL_NOTIFICATIONS_ENABLED" envDefault:"true"`
	UserConfirmations     bool `env:"USER_CONFIRMATIONS_ENABLED" envDefault:"true"`
	WhatsAppNotifications bool `env:"WHATSAPP_NOTIFICATIONS_ENABLED" envDefault:"false"`

	MaxRetries    int           `env:"MAX_RETRIES" envDefault:"3" validate:"gte=1"`
	BatchSize     int           `env:"BATCH_SIZE" envDefault:"10" validate:"gte=1"`
	RetentionDays int           `env:"RETENTION_DAYS" envDefault:"7" validate:"gte=1"`
	PollInterval  time.Duration `env:"POLL_INTERVAL" envDefault:"30s" validate:"gte=1s"`

	SMTPHost   string `env:"SMTP_HOST"`
	SMTPPort   int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser   string `env:"SMTP_USER"`
	SMTPPass   string `env:"SMTP_PASS"`
	FromEmail  string `env:"DEFAULT_FROM_EMAIL"`
	AdminEmail string `env:"ADMIN_EMAIL"`

	WhatsAppToken         string `env:"WHATSAPP_BUSINESS_API_TOKEN"`
	WhatsAppPhoneNumberID string `env:"WHATSAPP_BUSINESS_PHONE_NUMBER_ID"`
	AdminPhone            string `env:"ADMIN_PHONE"`
	CountryCode           string `env:"PHONE_COUNTRY_CODE" envDefault:"234"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
}

// Load reads .env if present, parses the environment and validates the
// result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := validator.New().Struct(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// Retention converts the retention setting to a duration.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// SQLiteDSN builds the DSN for the task store, matching the single-writer
// WAL setup the worker and API share.
func (c *Config) SQLiteDSN() string {
	return fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=journal_mode(WAL)", c.DBPath)
}
