package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"skill-assessment/internal/middleware"
)

func runToken(cmd *cobra.Command, args []string) error {
	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is not configured")
	}
	if tokenTTL <= 0 {
		return errors.New("--ttl must be positive")
	}

	token, err := middleware.IssueActorToken(cfg.Auth.JWTSecret, cfg.Auth.Issuer, tokenSubject, tokenTTL)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
