package commands

import (
	"os"
	"path/filepath"

	"workpulse/internal/alerts"
	"workpulse/internal/capacity"
	"workpulse/internal/collector"
	"workpulse/internal/config"
	"workpulse/internal/forecast"
	"workpulse/internal/logging"
	"workpulse/internal/performance"
	"workpulse/internal/rpc"
	"workpulse/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose       bool
	directoryFile string

	cfg *config.AppConfig

	col       *collector.Collector
	calc      *capacity.Calculator
	perf      *performance.Aggregator
	forecasts *forecast.Engine
	engine    *alerts.Engine
)

var rootCmd = &cobra.Command{
	Use:   "workpulse",
	Short: "Workpulse is a workforce capacity analytics engine",
	Long: `Workpulse turns per-person availability schedules into capacity metrics,
statistical forecasts, burnout risk assessments and monitoring alerts for
engineering leadership.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		path := directoryFile
		if path == "" {
			path = filepath.Join(cfg.DataPath, "directory.json")
		}
		dir, err := store.LoadDirectory(path)
		if err != nil {
			return err
		}

		snapshots := store.NewSnapshotStore()
		col = collector.NewCollector(dir, dir, dir, cfg.WorkWeek, collector.WithSink(snapshots))
		calc = capacity.NewCalculator(dir, dir, dir, cfg.WorkWeek)
		perf = performance.NewAggregator(col, dir)
		forecasts = forecast.NewEngine(col)
		engine = alerts.NewEngine(dir, calc, perf, forecasts, col, alertConfigs(cfg))

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("directory", path).
			Msg("Workpulse starting")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Info().Msg("Starting stdio JSON-RPC loop")
		server := rpc.NewServer(calc, perf, forecasts, engine, os.Stdin, os.Stdout)
		return server.Serve(cmd.Context())
	},
}

// alertConfigs applies configured thresholds on top of the defaults.
func alertConfigs(cfg *config.AppConfig) map[string]alerts.AlertConfiguration {
	configs := alerts.DefaultConfigurations()
	for alertType, threshold := range map[string]float64{
		alerts.TypeCapacityWarning:      cfg.CapacityWarningThreshold,
		alerts.TypeBurnoutRisk:          cfg.BurnoutRiskThreshold,
		alerts.TypePerformanceDecline:   cfg.PerformanceThreshold,
		alerts.TypeUtilizationImbalance: cfg.ImbalanceThreshold,
	} {
		c := configs[alertType]
		c.Threshold = threshold
		configs[alertType] = c
	}
	return configs
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&directoryFile, "directory", "", "path to the roster/schedule directory export (default $DATA_PATH/directory.json)")
}
