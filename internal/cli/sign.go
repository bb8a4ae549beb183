package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SignCmd returns the sign command
func SignCmd() *cobra.Command {
	var flags readingFlags

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print the integrity digest for a reading",
		Long: `Compute the hex HMAC-SHA256 the server expects in the sha256 field.
The digest covers trap_id, trap_type, gps and egg_count; barangay is not signed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.signed()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), req.SHA256)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
