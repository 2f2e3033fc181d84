package main

import (
	"fmt"

	"club-points-ledger/internal/common"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create member profiles from a YAML file",
	Long: `Creates member profiles listed in a YAML file. Members that already
exist are left untouched. Usage:

	clubctl seed --file members.yaml
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		members, err := common.LoadMemberSeed(file)
		if err != nil {
			return err
		}

		dbService, err := common.InitializeDatabaseOnly(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer dbService.Close()

		result, err := common.SeedMembers(cmd.Context(), dbService, members, zap.L())
		if err != nil {
			return err
		}

		common.PrintFooter(fmt.Sprintf("Seeded %d members (%d already present)", result.Created, result.Skipped), common.DefaultWidth)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().String("file", "members.yaml", "Path to the member seed file")
}
