package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/park285/cheese-board/internal/rules"
)

type AppConfig struct {
	HTTPAddr string `yaml:"http_addr"`

	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`

	IndicatorWSURL   string `yaml:"indicator_ws_url"`
	IndicatorHTTPURL string `yaml:"indicator_http_url"`
	IndicatorToken   string `yaml:"indicator_token"`
	IndicatorDryRun  bool   `yaml:"indicator_dryrun"`

	EnPassantRule   string `yaml:"en_passant_rule"`
	SessionTTLSec   int    `yaml:"session_ttl"`
	HistoryLimit    int    `yaml:"history_limit"`
	GenerateWorkers int    `yaml:"generate_workers"`

	MessagesDir string `yaml:"messages_dir"`
}

// Load applies defaults, then the YAML file named by CONFIG_FILE (if any), then
// environment variables.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:        ":8080",
		EnPassantRule:   "legacy",
		SessionTTLSec:   86400,
		HistoryLimit:    50,
		GenerateWorkers: 8,
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) applyFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) applyEnv() {
	setString(&c.HTTPAddr, "HTTP_ADDR")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.IndicatorWSURL, "INDICATOR_WS_URL")
	setString(&c.IndicatorHTTPURL, "INDICATOR_HTTP_URL")
	setString(&c.IndicatorToken, "INDICATOR_TOKEN")
	if v := strings.TrimSpace(os.Getenv("INDICATOR_DRYRUN")); v != "" {
		c.IndicatorDryRun = strings.EqualFold(v, "true") || v == "1"
	}
	setString(&c.MessagesDir, "MESSAGES_DIR")
	if v := strings.TrimSpace(os.Getenv("EN_PASSANT_RULE")); v != "" {
		c.EnPassantRule = strings.ToLower(v)
	}
	setPositiveInt(&c.SessionTTLSec, "SESSION_TTL")
	setPositiveInt(&c.HistoryLimit, "HISTORY_LIMIT")
	setPositiveInt(&c.GenerateWorkers, "GENERATE_WORKERS")
}

func (c *AppConfig) validate() error {
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return errors.New("HTTP_ADDR is required")
	}
	if _, err := rules.ParseEnPassantRule(c.EnPassantRule); err != nil {
		return fmt.Errorf("EN_PASSANT_RULE: %w", err)
	}
	if c.SessionTTLSec <= 0 || c.HistoryLimit <= 0 || c.GenerateWorkers <= 0 {
		return errors.New("session_ttl, history_limit and generate_workers must be positive")
	}
	return nil
}

// EnPassant returns the parsed rule. Load has already validated it.
func (c *AppConfig) EnPassant() rules.EnPassantRule {
	r, _ := rules.ParseEnPassantRule(c.EnPassantRule)
	return r
}

func (c *AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSec) * time.Second
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// 숫자 파싱 실패나 0 이하 값은 무시하고 기존 값을 유지.
func setPositiveInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}
