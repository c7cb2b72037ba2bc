package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const defaultJWTSecret = "change-me"

type Config struct {
	AppEnv         string `env:"APP_ENV" envDefault:"development"`
	Port           string `env:"PORT" envDefault:"8080"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBUser      string `env:"DB_USER" envDefault:"postgres"`
	DBPass      string `env:"DB_PASS"`
	DBName      string `env:"DB_NAME" envDefault:"yamdb"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`

	JWTSecret           string        `env:"JWT_SECRET" envDefault:"change-me"`
	JWTTTL              time.Duration `env:"JWT_TTL" envDefault:"24h"`
	ConfirmationCodeTTL time.Duration `env:"CONFIRMATION_CODE_TTL" envDefault:"24h"`
	BcryptCost          int           `env:"BCRYPT_COST" envDefault:"10"`

	PageDefaultLimit int `env:"PAGE_DEFAULT_LIMIT" envDefault:"10"`
	PageMaxLimit     int `env:"PAGE_MAX_LIMIT" envDefault:"100"`

	MailDriver string `env:"MAIL_DRIVER" envDefault:"log"` // log, smtp, redis
	MailFrom   string `env:"MAIL_FROM" envDefault:"noreply@yamdb.local"`
	SMTPHost   string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort   int    `env:"SMTP_PORT" envDefault:"25"`
	SMTPUser   string `env:"SMTP_USER"`
	SMTPPass   string `env:"SMTP_PASS"`

	RedisURL  string `env:"REDIS_URL"`
	MailQueue string `env:"MAIL_QUEUE" envDefault:"yamdb:mail:outbox"`
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.PageDefaultLimit < 1 {
		return fmt.Errorf("invalid PAGE_DEFAULT_LIMIT: %d", c.PageDefaultLimit)
	}
	if c.PageMaxLimit < c.PageDefaultLimit {
		return fmt.Errorf("PAGE_MAX_LIMIT (%d) is lower than PAGE_DEFAULT_LIMIT (%d)", c.PageMaxLimit, c.PageDefaultLimit)
	}
	switch c.MailDriver {
	case "log", "smtp":
	case "redis":
		if c.RedisURL == "" {
			return errors.New("MAIL_DRIVER=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown MAIL_DRIVER %q", c.MailDriver)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from the DB_* parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPass, c.DBName, c.DBPort,
	)
}

func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
