package commands

import (
	"fmt"

	"workpulse/internal/alerts"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run one monitoring cycle and print the active alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := engine.RunMonitoringCycle(cmd.Context()); err != nil {
			return err
		}

		active := engine.GetActiveAlerts(alerts.Filters{})
		if len(active) == 0 {
			fmt.Println("No active alerts.")
			return nil
		}
		for _, a := range active {
			fmt.Printf("[%s] %s on %s (expires %s)\n",
				a.Severity, a.Type, a.AffectedEntity, a.ExpirationDate.Format("2006-01-02 15:04"))
		}
		log.Info().Int("count", len(active)).Msg("Monitoring cycle finished")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}
