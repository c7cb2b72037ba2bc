package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"anoa.com/yamdb/internal/bootstrap"
	"anoa.com/yamdb/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, err := openDB(cfg)
		if err != nil {
			return err
		}

		if cfg.IsDevelopment() {
			if err := bootstrap.Migrate(db); err != nil {
				return err
			}
			if err := bootstrap.SeedAdminUser(ctx, db); err != nil {
				return err
			}
		}

		mail, closeMail, err := newMailer(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeMail()

		slog.Info("starting yamdb", "env", cfg.AppEnv, "mail_driver", cfg.MailDriver)
		return server.NewServer(cfg, db, mail).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
