package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evroute/core/planner"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the registered scoring strategies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, name := range planner.StrategyNames() {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
