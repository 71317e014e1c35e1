// Package config loads the process-level, env-sourced parameters from the
// "Process control surface" (spec §6) — the parameters that never change
// without a restart. Per-tick parameters (pause delay, resume lead, retry
// cap, ...) live in the Config tab and are owned by internal/configstore.
package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env         string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"required,oneof=debug info warn error"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	AdminPort   string `env:"ADMIN_PORT" envDefault:"8081"`

	GoogleSheetsID        string `env:"GOOGLE_SHEETS_ID,required" validate:"required"`
	SheetsCredentialsPath string `env:"SHEETS_CREDENTIALS_PATH,required" validate:"required"`
	TimeZone              string `env:"SCHEDULER_TIMEZONE" envDefault:"Asia/Seoul" validate:"required"`

	LoginMode         string `env:"LOGIN_MODE" envDefault:"standard"`
	DebugStartup      bool   `env:"DEBUG_STARTUP" envDefault:"false"`
	AutoExitAfterTask bool   `env:"AUTO_EXIT_AFTER_TASK" envDefault:"false"`

	ProfileServiceURL string `env:"PROFILE_SERVICE_URL,required" validate:"required,url"`
	WorkerPoolSize    int    `env:"WORKER_POOL_SIZE" envDefault:"1" validate:"min=1,max=64"`

	AdminJWTSecret string `env:"ADMIN_JWT_SECRET" validate:"required_if=Env production,required_if=Env staging"`

	ResendAPIKey     string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom       string `env:"RESEND_FROM" validate:"required_if=Env production,required_if=Env staging"`
	NotifyWebhookURL string `env:"NOTIFY_WEBHOOK_URL"`
	DigestCronExpr   string `env:"DIGEST_CRON_EXPR" envDefault:"0 9 * * *"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SlogLevel converts LogLevel to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
