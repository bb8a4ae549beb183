package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PratikDhanave/trapwatch-service/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trapctl",
		Short: "trapctl - field tool for trapwatch",
		Long: `trapctl signs trap readings with the shared secret and talks to the
trapwatch API: submit readings, list recent ones, trigger escalation.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.SignCmd())
	rootCmd.AddCommand(cli.SubmitCmd())
	rootCmd.AddCommand(cli.RecentCmd())
	rootCmd.AddCommand(cli.EscalateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
