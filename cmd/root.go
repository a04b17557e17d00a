package cmd

import (
	"fmt"
	"os"

	"wavecrate/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wavecrate",
	Short: "Wavecrate is a minimal media-catalog web service.",
	Run: func(cmd *cobra.Command, args []string) {
		// Bare invocation runs the server.
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
