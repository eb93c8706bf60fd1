package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Strategy != "queue" {
		t.Errorf("strategy = %q, want queue", cfg.Strategy)
	}
	if cfg.MaxRetries != 3 || cfg.BatchSize != 10 || cfg.RetentionDays != 7 {
		t.Errorf("defaults = retries %d batch %d retention %d", cfg.MaxRetries, cfg.BatchSize, cfg.RetentionDays)
	}
	if cfg.Retention() != 7*24*time.Hour {
		t.Errorf("retention = %v", cfg.Retention())
	}
	if cfg.CountryCode != "234" {
		t.Errorf("country code = %q", cfg.CountryCode)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("NOTIFY_STRATEGY", "threaded")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("WHATSAPP_NOTIFICATIONS_ENABLED", "true")
	t.Setenv("POLL_INTERVAL", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Strategy != "threaded" || cfg.MaxRetries != 5 || !cfg.WhatsAppNotifications {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("poll interval = %v", cfg.PollInterval)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("NOTIFY_STRATEGY", "carrier-pigeon")
	if _, err := Load(); err == nil {
		t.Fatal("invalid strategy accepted")
	}
}
