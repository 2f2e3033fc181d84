package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SERVER_PORT", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Driver != "sqlite3" || cfg.Server.Port != 8080 {
		t.Errorf("Unexpected defaults: driver=%s port=%d", cfg.Database.Driver, cfg.Server.Port)
	}
	if cfg.Database.TxMaxAttempts != 5 || cfg.Database.BusyTimeout != 5*time.Second {
		t.Errorf("Unexpected transaction defaults: %+v", cfg.Database)
	}
	if cfg.MQ.Channel != "point-events" || cfg.Scheduler.TierResyncInterval != 0 {
		t.Errorf("Unexpected defaults: channel=%s resync=%s", cfg.MQ.Channel, cfg.Scheduler.TierResyncInterval)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://club@localhost/club?sslmode=disable")
	t.Setenv("DB_TX_MAX_ATTEMPTS", "9")
	t.Setenv("RELAY_ENABLED", "true")
	t.Setenv("TIER_RESYNC_INTERVAL", "15m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.TxMaxAttempts != 9 {
		t.Errorf("Overrides not applied: %+v", cfg.Database)
	}
	if !cfg.Relay.Enabled || cfg.Scheduler.TierResyncInterval != 15*time.Minute {
		t.Errorf("Overrides not applied: relay=%v resync=%s", cfg.Relay.Enabled, cfg.Scheduler.TierResyncInterval)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("DB_BUSY_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid duration")
	}
}
