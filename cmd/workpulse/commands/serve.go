package commands

import (
	"os"

	"workpulse/internal/rpc"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the stdio JSON-RPC loop (same as running without a subcommand)",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Info().Msg("Starting stdio JSON-RPC loop")
		server := rpc.NewServer(calc, perf, forecasts, engine, os.Stdin, os.Stdout)
		return server.Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
