package config

import (
	"os"
	"time"

	"exam-session-service/internal/domain"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
		Node string `yaml:"node"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Quiz struct {
		TTL     string `yaml:"ttl"`
		BankDir string `yaml:"bank_dir"`
	} `yaml:"quiz"`
	Exam struct {
		Tick string `yaml:"tick"`
	} `yaml:"exam"`
	Presence struct {
		AFK      string `yaml:"afk"`
		InTest   string `yaml:"in_test"`
		Browsing string `yaml:"browsing"`
	} `yaml:"presence"`
	Progress struct {
		TTL string `yaml:"ttl"`
	} `yaml:"progress"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// PresenceTTL resolves the presence lifetimes, falling back to the defaults
// per status.
func (c Config) PresenceTTL() domain.PresenceTTL {
	def := domain.DefaultPresenceTTL()
	return domain.PresenceTTL{
		AFK:      TTLDuration(c.Presence.AFK, def.AFK),
		InTest:   TTLDuration(c.Presence.InTest, def.InTest),
		Browsing: TTLDuration(c.Presence.Browsing, def.Browsing),
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
