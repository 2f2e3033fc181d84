package main

import (
	"fmt"

	"club-points-ledger/internal/api"
	"club-points-ledger/internal/common"
	"club-points-ledger/internal/formance"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rankingCmd = &cobra.Command{
	Use:   "ranking",
	Short: "Print the member leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")
		withMirror, _ := cmd.Flags().GetBool("mirror")
		color, _ := cmd.Flags().GetBool("color")

		dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer dbService.Close()

		ranking, err := api.NewLedgerService(dbService).GetRanking(ctx, limit)
		if err != nil {
			return err
		}

		var mirror *formance.Service
		if withMirror {
			if !cfg.Formance.Enabled {
				return fmt.Errorf("--mirror requires FORMANCE_ENABLED=true")
			}
			mirror, err = formance.NewService(ctx, cfg.Formance)
			if err != nil {
				return fmt.Errorf("failed to initialize formance mirror: %w", err)
			}
		}

		common.PrintHeader("CLUB RANKING", common.WideWidth)
		if len(ranking) == 0 {
			fmt.Println("No ranked members yet")
		}
		for i, entry := range ranking {
			row := common.FormatRankRow(entry, color)
			if mirror != nil {
				mirrored, err := mirror.MemberPoints(ctx, entry.UserId)
				if err != nil {
					zap.L().Warn("Failed to read mirrored balance",
						zap.String("user_id", entry.UserId),
						zap.Error(err))
					row += "  mirror: n/a"
				} else if mirrored != entry.Points {
					row += fmt.Sprintf("  mirror: %d (drift %+d)", mirrored, mirrored-entry.Points)
				} else {
					row += "  mirror: ok"
				}
			}
			fmt.Println(common.BoxPrefix(i == len(ranking)-1) + row)
		}
		common.PrintFooter(fmt.Sprintf("%d members", len(ranking)), common.WideWidth)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rankingCmd)
	rankingCmd.Flags().Int("limit", api.DefaultRankingLimit, "Number of members to show")
	rankingCmd.Flags().Bool("mirror", false, "Compare each balance against the Formance mirror")
	rankingCmd.Flags().Bool("color", true, "Color tier labels")
}
