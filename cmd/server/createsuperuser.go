package main

import (
	"errors"
	"log/slog"

	"anoa.com/yamdb/internal/bootstrap"
	"github.com/spf13/cobra"
)

var superuserFlags struct {
	username string
	email    string
}

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create a superuser, or promote an existing user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if superuserFlags.username == "" || superuserFlags.email == "" {
			return errors.New("--username and --email are required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}

		user, err := bootstrap.CreateSuperuser(cmd.Context(), db, superuserFlags.username, superuserFlags.email)
		if err != nil {
			return err
		}

		slog.Info("superuser ready", "username", user.Username, "email", user.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createSuperuserCmd)
	createSuperuserCmd.Flags().StringVar(&superuserFlags.username, "username", "", "username of the superuser")
	createSuperuserCmd.Flags().StringVar(&superuserFlags.email, "email", "", "email of the superuser")
}
