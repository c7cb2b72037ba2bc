package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"anoa.com/yamdb/internal/config"
	"anoa.com/yamdb/pkg/database"
	"anoa.com/yamdb/pkg/mailer"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// mailTimeout bounds a single background delivery.
const mailTimeout = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:          "yamdb",
	Short:        "YaMDb title review API",
	SilenceUsage: true,
}

// loadConfig loads the configuration and installs the process logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	return cfg, nil
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Connect(cfg.DSN(), cfg.IsDevelopment() && cfg.SlogLevel() == slog.LevelDebug)
}

func openRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func smtpSender(cfg *config.Config) *mailer.SMTPSender {
	return mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
}

// newMailer builds the sender selected by MAIL_DRIVER. Deliveries run in the
// background; the returned func waits for them and releases the redis client.
func newMailer(ctx context.Context, cfg *config.Config) (*mailer.AsyncSender, func(), error) {
	logger := slog.Default()
	release := func() {}

	var next mailer.Sender
	switch cfg.MailDriver {
	case "smtp":
		next = smtpSender(cfg)
	case "redis":
		client, err := openRedis(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		next = mailer.NewRedisQueue(client, cfg.MailQueue)
		release = func() { _ = client.Close() }
	default:
		next = mailer.NewLogSender(logger)
	}

	async := mailer.NewAsyncSender(next, logger, mailTimeout)
	return async, func() {
		async.Wait()
		release()
	}, nil
}
