package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finopsguard/guardrail/internal/model"
)

var (
	webhookName   string
	webhookURL    string
	webhookSecret string
	webhookEvents string
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage webhook subscriptions",
}

var webhookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered webhooks",
	Args:  cobra.NoArgs,
	RunE:  runWebhookList,
}

var webhookAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a webhook",
	Args:  cobra.NoArgs,
	RunE:  runWebhookAdd,
}

var webhookRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a webhook",
	Args:  cobra.ExactArgs(1),
	RunE:  runWebhookRm,
}

var webhookTestCmd = &cobra.Command{
	Use:   "test <id>",
	Short: "Send a synthetic test delivery to a webhook",
	Args:  cobra.ExactArgs(1),
	RunE:  runWebhookTest,
}

func init() {
	webhookAddCmd.Flags().StringVar(&webhookName, "name", "", "webhook name (required)")
	webhookAddCmd.Flags().StringVar(&webhookURL, "url", "", "destination URL (required)")
	webhookAddCmd.Flags().StringVar(&webhookSecret, "secret", "", "HMAC signing secret")
	webhookAddCmd.Flags().StringVar(&webhookEvents, "events", "analysis_completed", "comma-separated event types to subscribe to")

	webhookCmd.AddCommand(webhookListCmd, webhookAddCmd, webhookRmCmd, webhookTestCmd)
}

func runWebhookList(cmd *cobra.Command, args []string) error {
	var webhooks []model.Webhook
	if err := newAPIClient().do(cmd.Context(), "GET", "/webhooks/", nil, &webhooks); err != nil {
		return err
	}
	for _, w := range webhooks {
		state := "disabled"
		if w.Enabled {
			state = "enabled"
		}
		fmt.Printf("%-20s %-20s %-40s %s\n", w.ID, w.Name, w.URL, state)
	}
	return nil
}

func runWebhookAdd(cmd *cobra.Command, args []string) error {
	if webhookName == "" || webhookURL == "" {
		return fmt.Errorf("--name and --url are required")
	}
	var events []model.WebhookEventType
	for _, e := range strings.Split(webhookEvents, ",") {
		e = strings.TrimSpace(e)
		if e != "" {
			events = append(events, model.WebhookEventType(e))
		}
	}
	req := model.Webhook{
		Name:    webhookName,
		URL:     webhookURL,
		Secret:  webhookSecret,
		Events:  events,
		Enabled: true,
	}
	var created model.Webhook
	if err := newAPIClient().do(cmd.Context(), "POST", "/webhooks/", req, &created); err != nil {
		return err
	}
	fmt.Printf("created webhook %s\n", created.ID)
	return nil
}

func runWebhookRm(cmd *cobra.Command, args []string) error {
	if err := newAPIClient().do(cmd.Context(), "DELETE", "/webhooks/"+args[0], nil, nil); err != nil {
		return err
	}
	fmt.Printf("deleted webhook %s\n", args[0])
	return nil
}

func runWebhookTest(cmd *cobra.Command, args []string) error {
	var delivery model.WebhookDelivery
	if err := newAPIClient().do(cmd.Context(), "POST", "/webhooks/"+args[0]+"/test", nil, &delivery); err != nil {
		return err
	}
	fmt.Printf("delivery %s: %s (status %d)\n", delivery.ID, delivery.Status, delivery.ResponseStatus)
	if delivery.Status != model.DeliveryDelivered {
		return fmt.Errorf("test delivery did not succeed: %s", delivery.ErrorMessage)
	}
	return nil
}
