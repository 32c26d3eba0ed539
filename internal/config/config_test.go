package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAndResolveDurations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `server:
  port: "9090"
redis:
  addr: localhost:6379
quiz:
  ttl: 5m
  bank_dir: ./banks
presence:
  browsing: 45s
progress:
  ttl: 2h
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.Addr != "localhost:6379" || cfg.Quiz.BankDir != "./banks" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if got := TTLDuration(cfg.Quiz.TTL, time.Minute); got != 5*time.Minute {
		t.Fatalf("quiz ttl = %v", got)
	}
	if got := TTLDuration(cfg.Progress.TTL, time.Minute); got != 2*time.Hour {
		t.Fatalf("progress ttl = %v", got)
	}

	ttl := cfg.PresenceTTL()
	if ttl.Browsing != 45*time.Second || ttl.AFK != 120*time.Second || ttl.InTest != 180*time.Second {
		t.Fatalf("unexpected presence ttl %+v", ttl)
	}
}

func TestTTLDurationFallsBack(t *testing.T) {
	if got := TTLDuration("", time.Second); got != time.Second {
		t.Fatalf("empty: got %v", got)
	}
	if got := TTLDuration("soon", time.Second); got != time.Second {
		t.Fatalf("invalid: got %v", got)
	}
}
