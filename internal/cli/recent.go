package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// RecentCmd returns the recent command
func RecentCmd() *cobra.Command {
	var (
		server string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recent readings",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := NewClient(server, "").Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list readings: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No readings found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tTRAP\tTYPE\tGPS\tEGGS\tBARANGAY\tINTEGRITY")
			fmt.Fprintln(w, "--\t----\t----\t----\t---\t----\t--------\t---------")
			for _, e := range entries {
				barangay := e.Barangay
				if barangay == "" {
					barangay = "-"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
					e.ID, e.Timestamp, e.TrapID, e.TrapType, e.GPS, e.EggCount, barangay, validity(e.SHA256Valid))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&server, "server", DefaultServer, "trapwatch API base URL")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum readings to show (server caps at 200)")
	return cmd
}
