package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/idealservice/waste-pickup/internal/api/middleware"
	"github.com/idealservice/waste-pickup/internal/pkg/config"
)

func NewTokenCommand() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a JWT for the HTTP API, signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}

			signed, err := middleware.IssueToken(cfg.JWTSecret, subject, role, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&subject, "subject", "admin", "token subject, logged with every mutation")
	flags.StringVar(&role, "role", middleware.RoleAdmin, "token role (admin or viewer)")
	flags.DurationVar(&ttl, "ttl", 30*24*time.Hour, "token lifetime; 0 for no expiry")

	return cmd
}
