package main

import (
	"fmt"
	"time"

	"club-points-ledger/internal/auth"
	"club-points-ledger/internal/common"
	"club-points-ledger/internal/scheduler"

	"github.com/spf13/cobra"
)

var resyncCmd = &cobra.Command{
	Use:   "resync",
	Short: "Recompute every stored tier from points and flags",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbService, err := common.InitializeDatabaseOnly(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer dbService.Close()

		fixed, err := scheduler.ResyncTiers(cmd.Context(), dbService)
		if err != nil {
			return err
		}
		fmt.Printf("Corrected %d tiers\n", fixed)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <uid>",
	Short: "Issue a bearer token for local testing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Server.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required")
		}
		ttl, _ := cmd.Flags().GetDuration("ttl")
		signed, err := auth.IssueToken(args[0], []byte(cfg.Server.JWTSecret), ttl)
		if err != nil {
			return err
		}
		fmt.Println(signed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resyncCmd, tokenCmd)
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
}
