package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/finopsguard/guardrail/internal/model"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage budget and expression policies",
}

var policyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every registered policy",
	Args:  cobra.NoArgs,
	RunE:  runPolicyList,
}

var policyGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one policy",
	Args:  cobra.ExactArgs(1),
	RunE:  runPolicyGet,
}

var policyAddCmd = &cobra.Command{
	Use:   "add <file.json>",
	Short: "Create a policy from a JSON document",
	Args:  cobra.ExactArgs(1),
	RunE:  runPolicyAdd,
}

var policyRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a policy",
	Args:  cobra.ExactArgs(1),
	RunE:  runPolicyRm,
}

func init() {
	policyCmd.AddCommand(policyListCmd, policyGetCmd, policyAddCmd, policyRmCmd)
}

func runPolicyList(cmd *cobra.Command, args []string) error {
	var policies []model.Policy
	if err := newAPIClient().do(cmd.Context(), "GET", "/mcp/policies/", nil, &policies); err != nil {
		return err
	}
	for _, p := range policies {
		state := "disabled"
		if p.Enabled {
			state = "enabled"
		}
		fmt.Printf("%-20s %-30s %-10s %s\n", p.ID, p.Name, p.OnViolation, state)
	}
	return nil
}

func runPolicyGet(cmd *cobra.Command, args []string) error {
	var p model.Policy
	if err := newAPIClient().do(cmd.Context(), "GET", "/mcp/policies/"+args[0], nil, &p); err != nil {
		return err
	}
	return printJSON(p)
}

func runPolicyAdd(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	var p model.Policy
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}
	var created model.Policy
	if err := newAPIClient().do(cmd.Context(), "POST", "/mcp/policies/", p, &created); err != nil {
		return err
	}
	fmt.Printf("created policy %s\n", created.ID)
	return nil
}

func runPolicyRm(cmd *cobra.Command, args []string) error {
	if err := newAPIClient().do(cmd.Context(), "DELETE", "/mcp/policies/"+args[0], nil, nil); err != nil {
		return err
	}
	fmt.Printf("deleted policy %s\n", args[0])
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
