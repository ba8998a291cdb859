package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"estatebot/internal/domain/policy"
)

const defaultJWTSecret = "change-me-jwt-secret"

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"dev"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	DatabaseURL string `env:"DATABASE_URL" envDefault:"file:estatebot.db"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-me-jwt-secret"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"720h"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	PolicyFile   string  `env:"POLICY_FILE"`
	AdminIDs     []int64 `env:"ADMIN_IDS" envSeparator:","`
	AdminContact string  `env:"ADMIN_CONTACT"`

	RabbitMQURL string `env:"RABBITMQ_URL"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	RateLimitPerHour int    `env:"RATE_LIMIT_PER_HOUR" envDefault:"10"`
	ReminderCron     string `env:"REMINDER_CRON" envDefault:"0 10 * * *"`

	CleanupCron           string        `env:"CLEANUP_CRON" envDefault:"30 3 * * *"`
	NotificationRetention time.Duration `env:"NOTIFICATION_RETENTION" envDefault:"2160h"`
	JobTimeout            time.Duration `env:"JOB_TIMEOUT" envDefault:"5m"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Policy builds the role policy: the YAML file when configured, defaults
// otherwise, with env admins and admin contact layered on top.
func (c *Config) Policy() (*policy.Policy, error) {
	p := policy.Default()
	if c.PolicyFile != "" {
		loaded, err := policy.Load(c.PolicyFile)
		if err != nil {
			return nil, err
		}
		p = loaded
	}
	if c.AdminContact != "" {
		p.AdminContact = c.AdminContact
	}
	return p.WithAdmins(c.AdminIDs...), nil
}

func (c *Config) IsProd() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.NotificationRetention <= 0 {
		return fmt.Errorf("NOTIFICATION_RETENTION must be > 0")
	}
	if cfg.RateLimitPerHour < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_HOUR must be >= 0")
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if len(cfg.AdminIDs) == 0 && cfg.PolicyFile == "" {
			return fmt.Errorf("in prod/release ADMIN_IDS or POLICY_FILE must name at least one admin")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}
