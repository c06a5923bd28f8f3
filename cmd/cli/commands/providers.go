package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Manage LLM providers",
}

var listProvidersCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available LLM providers",
	RunE: func(_ *cobra.Command, _ []string) error {
		response, err := apiClient.ListProviders(context.Background())
		if err != nil {
			return fmt.Errorf("error fetching providers: %w", err)
		}
		return printJSON(response)
	},
}

func init() {
	providersCmd.AddCommand(listProvidersCmd)
}

// GetProvidersCmd returns the providers command
func GetProvidersCmd() *cobra.Command {
	return providersCmd
}
