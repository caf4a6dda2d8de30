package cmd

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/finopsguard/guardrail/internal/model"
)

var (
	checkIaCType     string
	checkEnvironment string
	checkMonthlyCap  string
)

var checkCmd = &cobra.Command{
	Use:   "check <path>",
	Short: "Estimate cost and evaluate policy for an IaC file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkIaCType, "iac-type", "", "terraform or ansible (default: guessed from file extension)")
	checkCmd.Flags().StringVar(&checkEnvironment, "environment", "dev", "target environment")
	checkCmd.Flags().StringVar(&checkMonthlyCap, "monthly-budget", "", "inline monthly budget override, e.g. 500.00")
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	iacType := checkIaCType
	if iacType == "" {
		iacType = guessIaCType(path)
	}

	req := model.CheckRequest{
		IaCType:     iacType,
		IaCPayload:  base64.StdEncoding.EncodeToString(payload),
		Environment: checkEnvironment,
	}
	if checkMonthlyCap != "" {
		budget, err := decimal.NewFromString(checkMonthlyCap)
		if err != nil {
			return fmt.Errorf("invalid --monthly-budget: %w", err)
		}
		req.BudgetRules = &model.BudgetRules{MonthlyBudget: &budget}
	}

	var resp model.CheckResponse
	if err := newAPIClient().do(cmd.Context(), "POST", "/mcp/checkCostImpact", req, &resp); err != nil {
		return err
	}

	printCheckResponse(resp)

	if resp.PolicyEval != nil && resp.PolicyEval.Status == "fail" {
		return fmt.Errorf("policy %s blocked this change: %s", resp.PolicyEval.PolicyID, resp.PolicyEval.Reason)
	}
	return nil
}

func guessIaCType(path string) string {
	if strings.HasSuffix(path, ".yml") || strings.HasSuffix(path, ".yaml") {
		return "ansible"
	}
	return "terraform"
}

func printCheckResponse(resp model.CheckResponse) {
	fmt.Printf("Estimated monthly cost:    $%s\n", resp.EstimatedMonthlyCost.StringFixed(2))
	fmt.Printf("Estimated first week cost: $%s\n", resp.EstimatedFirstWeekCost.StringFixed(2))
	fmt.Printf("Pricing confidence:        %s\n", resp.PricingConfidence)
	if len(resp.BreakdownByResource) > 0 {
		fmt.Println("\nBreakdown:")
		for _, item := range resp.BreakdownByResource {
			fmt.Printf("  %-40s $%s/mo\n", item.ResourceID, item.MonthlyCost.StringFixed(2))
		}
	}
	if len(resp.RiskFlags) > 0 {
		fmt.Println("\nRisk flags:")
		for _, flag := range resp.RiskFlags {
			fmt.Printf("  - %s\n", flag)
		}
	}
	if resp.PolicyEval != nil {
		fmt.Printf("\nPolicy %q: %s\n", resp.PolicyEval.PolicyID, resp.PolicyEval.Status)
		if resp.PolicyEval.Reason != "" {
			fmt.Printf("  %s\n", resp.PolicyEval.Reason)
		}
	}
}

