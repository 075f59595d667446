// Command artic-report fetches artwork datasets for a declarative batch of
// report definitions, renders them to JSON/HTML/PDF, and distributes them by
// email.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "artic-report",
	Short:         "Batch artwork report generator",
	Long:          "artic-report fetches artwork metadata from the configured search API,\nrenders JSON and PDF reports, and distributes them by email.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
