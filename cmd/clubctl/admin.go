package main

import (
	"context"
	"fmt"

	"club-points-ledger/internal/auth"
	"club-points-ledger/internal/common"
	"club-points-ledger/internal/models"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var adjustCmd = &cobra.Command{
	Use:   "adjust",
	Short: "Adjust a member's points as an admin",
	Long: `Applies a manual point adjustment on behalf of an admin account.
Reusing a request id replays the original adjustment. Usage:

	clubctl adjust --as admin-uid --target member-uid --delta -20
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		as, _ := cmd.Flags().GetString("as")
		target, _ := cmd.Flags().GetString("target")
		delta, _ := cmd.Flags().GetInt64("delta")
		requestId, _ := cmd.Flags().GetString("request-id")
		if requestId == "" {
			requestId = uuid.NewString()
		}

		return withServices(cmd.Context(), func(ctx context.Context, services *common.Services) error {
			result, err := services.ClubService.AdminAdjustPoints(auth.WithCaller(ctx, as), models.AdjustPointsRequest{
				TargetUid: target,
				Delta:     delta,
				RequestId: requestId,
			})
			if err != nil {
				return err
			}
			fmt.Printf("%s now has %d points (%s), request %s\n", target, result.Points, result.Tier, requestId)
			return nil
		})
	},
}

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Change a member's role flags as an admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		as, _ := cmd.Flags().GetString("as")
		target, _ := cmd.Flags().GetString("target")

		req := models.SetRoleRequest{TargetUid: target}
		req.IsAdmin = changedBool(cmd, "admin")
		req.IsChallenger = changedBool(cmd, "challenger")
		req.IsTestAccount = changedBool(cmd, "test-account")

		return withServices(cmd.Context(), func(ctx context.Context, services *common.Services) error {
			if _, err := services.ClubService.AdminSetRole(auth.WithCaller(ctx, as), req); err != nil {
				return err
			}
			standing, err := services.LedgerService.GetStanding(ctx, target)
			if err != nil {
				return err
			}
			fmt.Printf("%s updated: %s with %d points\n", target, standing.Tier, standing.Points)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(adjustCmd, roleCmd)

	for _, c := range []*cobra.Command{adjustCmd, roleCmd} {
		c.Flags().String("as", "", "Acting admin user id")
		c.Flags().String("target", "", "Target member user id")
		_ = c.MarkFlagRequired("as")
		_ = c.MarkFlagRequired("target")
	}

	adjustCmd.Flags().Int64("delta", 0, "Signed point adjustment")
	adjustCmd.Flags().String("request-id", "", "Idempotency key for the adjustment (generated when empty)")
	_ = adjustCmd.MarkFlagRequired("delta")

	roleCmd.Flags().Bool("admin", false, "Grant or revoke admin")
	roleCmd.Flags().Bool("challenger", false, "Grant or revoke challenger")
	roleCmd.Flags().Bool("test-account", false, "Mark or unmark as a test account")
}

// changedBool returns the flag value only when it was set on the command line.
func changedBool(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}

func withServices(ctx context.Context, fn func(ctx context.Context, services *common.Services) error) error {
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer services.Close()
	return fn(ctx, services)
}
