package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// EscalateCmd returns the escalate command
func EscalateCmd() *cobra.Command {
	var server, apiKey string

	cmd := &cobra.Command{
		Use:   "escalate",
		Short: "Trigger an escalation pass on the server",
		Long: `Ask the server to look up the highest egg count on record and, when it
exceeds the configured threshold, notify the contact for that trap's zone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := NewClient(server, apiKey).Escalate(cmd.Context())
			if err != nil {
				return fmt.Errorf("escalation failed: %w", err)
			}

			status := color.New(color.FgYellow).Sprint(resp.Status)
			if resp.Status == "sent" {
				status = color.New(color.FgHiMagenta).Sprint(resp.Status)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Escalation %s: %s\n", status, resp.Message)
			if resp.AlertID != "" {
				fmt.Fprintf(out, "   alert %s\n", resp.AlertID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", DefaultServer, "trapwatch API base URL")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "operator API key (X-API-Key)")
	return cmd
}
