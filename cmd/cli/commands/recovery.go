package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var recoveryCmd = &cobra.Command{
	Use:   "recovery",
	Short: "Manage stuck-job recovery",
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a stuck-job recovery sweep",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		summary, err := apiClient.RunSweep(context.Background(), dryRun)
		if err != nil {
			return fmt.Errorf("error running sweep: %w", err)
		}
		return printJSON(summary)
	},
}

func init() {
	sweepCmd.Flags().Bool("dry-run", false, "Report stuck jobs without repairing them")
	recoveryCmd.AddCommand(sweepCmd)
}

// GetRecoveryCmd returns the recovery command
func GetRecoveryCmd() *cobra.Command {
	return recoveryCmd
}
