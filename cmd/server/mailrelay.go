package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"anoa.com/yamdb/pkg/mailer"
	"github.com/spf13/cobra"
)

var mailRelayCmd = &cobra.Command{
	Use:   "mailrelay",
	Short: "Deliver queued mail from redis over SMTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.RedisURL == "" {
			return errors.New("mailrelay requires REDIS_URL")
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client, err := openRedis(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		relay := mailer.NewRelay(client, cfg.MailQueue, smtpSender(cfg), slog.Default())
		if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mailRelayCmd)
}
