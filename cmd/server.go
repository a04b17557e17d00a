package cmd

import (
	"wavecrate/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the wavecrate HTTP server",
	Long:  `Start the catalog HTTP server: REST API, uploaded-media serving and the admin stats feed.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
