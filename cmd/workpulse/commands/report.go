package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"workpulse/internal/alerts"
	"workpulse/internal/report"
	"workpulse/internal/schedule"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	reportStart string
	reportEnd   string
	reportOpen  bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate an insight report for a period",
	RunE: func(cmd *cobra.Command, args []string) error {
		end := time.Now().UTC().Truncate(24 * time.Hour)
		start := end.AddDate(0, -3, 0)
		var err error
		if reportStart != "" {
			if start, err = time.Parse(schedule.DateLayout, reportStart); err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
		}
		if reportEnd != "" {
			if end, err = time.Parse(schedule.DateLayout, reportEnd); err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
		}

		summary, err := engine.GenerateInsights(cmd.Context(), start, end)
		if err != nil {
			return err
		}
		active := engine.GetActiveAlerts(alerts.Filters{})

		if !reportOpen {
			fmt.Print(report.RenderMarkdown(summary, active))
			return nil
		}

		path := filepath.Join(cfg.CacheDir, "insight-report.html")
		if err := os.WriteFile(path, []byte(report.RenderHTML(summary, active)), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		log.Info().Str("path", path).Msg("Opening report in browser")
		return browser.OpenFile(path)
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportStart, "start", "", "period start (YYYY-MM-DD, default 3 months ago)")
	reportCmd.Flags().StringVar(&reportEnd, "end", "", "period end (YYYY-MM-DD, default today)")
	reportCmd.Flags().BoolVar(&reportOpen, "open", false, "render HTML and open it in the browser")
	rootCmd.AddCommand(reportCmd)
}
