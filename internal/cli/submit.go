package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// SubmitCmd returns the submit command
func SubmitCmd() *cobra.Command {
	var (
		flags  readingFlags
		server string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Sign a reading and send it to the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.signed()
			if err != nil {
				return err
			}

			resp, err := NewClient(server, "").Submit(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("failed to submit reading: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Stored record %d for %s (%d eggs) %s\n",
				resp.ID, req.TrapID, req.EggCount, validity(resp.SHA256Valid))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&server, "server", DefaultServer, "trapwatch API base URL")
	return cmd
}

func validity(valid bool) string {
	if valid {
		return color.New(color.FgGreen).Sprint("[valid]")
	}
	return color.New(color.FgRed).Sprint("[INVALID]")
}
