package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"workpulse/internal/schedule"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath string
	LogDir   string
	CacheDir string

	WorkWeek          schedule.WorkWeek
	SprintLengthWeeks int
	LookbackMonths    int

	CapacityWarningThreshold float64
	BurnoutRiskThreshold     float64
	PerformanceThreshold     float64
	ImbalanceThreshold       float64
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for
	// servers launched by a supervisor with an arbitrary working directory)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve data paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	cacheDir := filepath.Join(dataPath, "cache")

	// Ensure directories exist
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", cacheDir).Msg("Failed to create cache directory")
	}

	cfg := &AppConfig{
		DataPath: dataPath,
		LogDir:   logDir,
		CacheDir: cacheDir,

		WorkWeek:          parseWorkWeek(getEnv("WORK_WEEK_DAYS", "")),
		SprintLengthWeeks: getEnvInt("SPRINT_LENGTH_WEEKS", 2),
		LookbackMonths:    getEnvInt("LOOKBACK_MONTHS", 6),

		CapacityWarningThreshold: getEnvFloat("CAPACITY_WARNING_THRESHOLD", 95),
		BurnoutRiskThreshold:     getEnvFloat("BURNOUT_RISK_THRESHOLD", 0.7),
		PerformanceThreshold:     getEnvFloat("PERFORMANCE_THRESHOLD", 70),
		ImbalanceThreshold:       getEnvFloat("IMBALANCE_THRESHOLD", 30),
	}

	return cfg, nil
}

// parseWorkWeek turns a comma-separated day list (e.g. "Mon,Tue,Wed,Thu,Fri")
// into a work week, falling back to the Sunday-Thursday default.
func parseWorkWeek(raw string) schedule.WorkWeek {
	if raw == "" {
		return schedule.DefaultWorkWeek()
	}
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			names = append(names, p)
		}
	}
	return schedule.ParseWorkWeek(names)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return fallback
}
