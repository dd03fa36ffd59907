package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/park285/cheese-board/internal/rules"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "HTTP_ADDR", "REDIS_URL", "DATABASE_URL", "INDICATOR_WS_URL",
		"INDICATOR_HTTP_URL", "INDICATOR_TOKEN", "INDICATOR_DRYRUN",
		"EN_PASSANT_RULE", "SESSION_TTL", "HISTORY_LIMIT", "GENERATE_WORKERS", "MESSAGES_DIR",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.HistoryLimit != 50 || cfg.GenerateWorkers != 8 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.EnPassant() != rules.EnPassantLegacy || cfg.SessionTTL() != 24*time.Hour {
		t.Fatalf("derived values: %v %v", cfg.EnPassant(), cfg.SessionTTL())
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "board.yaml")
	body := "http_addr: \":9000\"\nredis_url: redis://file:6379/0\nhistory_limit: 5\nen_passant_rule: standard\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("REDIS_URL", "redis://env:6379/1")
	t.Setenv("HISTORY_LIMIT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9000" || cfg.RedisURL != "redis://env:6379/1" || cfg.HistoryLimit != 5 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.EnPassant() != rules.EnPassantStandard {
		t.Fatalf("rule = %v", cfg.EnPassant())
	}
}

func TestLoadRejectsUnknownRule(t *testing.T) {
	clearEnv(t)
	t.Setenv("EN_PASSANT_RULE", "sometimes")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown en passant rule")
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoadIndicatorSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("INDICATOR_WS_URL", "ws://gateway:7000/ws")
	t.Setenv("INDICATOR_HTTP_URL", "http://gateway:7000")
	t.Setenv("INDICATOR_DRYRUN", "TRUE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IndicatorWSURL != "ws://gateway:7000/ws" || cfg.IndicatorHTTPURL != "http://gateway:7000" {
		t.Fatalf("indicator urls = %q %q", cfg.IndicatorWSURL, cfg.IndicatorHTTPURL)
	}
	if !cfg.IndicatorDryRun {
		t.Fatalf("dryrun not applied")
	}
}
