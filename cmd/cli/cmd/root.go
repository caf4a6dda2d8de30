// Package cmd provides the CLI commands for the guardrail agent.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	apiKey    string
)

var rootCmd = &cobra.Command{
	Use:   "guardrail",
	Short: "Cost-aware guardrail for infrastructure-as-code changes",
	Long: `guardrail evaluates Terraform and Ansible changes against cost
estimates and policy budgets before they merge.

Examples:
  guardrail check ./infra/main.tf --environment prod
  guardrail policy list
  guardrail webhook add --name slack --url https://hooks.example.com/x`,
}

// Execute runs the CLI with ctx controlling request cancellation; a
// canceled ctx (SIGINT/SIGTERM) surfaces as context.Canceled to main so it
// can map to exit code 130.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "guardrail server base URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key, when the server requires one")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(policyCmd)
	rootCmd.AddCommand(webhookCmd)
}
