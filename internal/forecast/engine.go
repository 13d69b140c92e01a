// Package forecast implements the predictive analytics engine: ensemble
// capacity forecasting, burnout risk assessment, team sizing and Monte Carlo
// delivery prediction, all built on the statistical model library.
package forecast

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"workpulse/internal/cache"
	"workpulse/internal/collector"
	"workpulse/internal/stats"

	"github.com/rs/zerolog/log"
)

// Fixed ensemble weights for the three capacity models.
const (
	weightLinear        = 0.4
	weightSeasonal      = 0.4
	weightMovingAverage = 0.2
)

// minForecastPoints is the smallest history that supports a capacity forecast.
const minForecastPoints = 3

// seasonalPeriod is the sprint count of one seasonal cycle.
const seasonalPeriod = 4

// ConfidenceIntervals bound the ensemble predictions.
type ConfidenceIntervals struct {
	Lower []float64 `json:"lower"`
	Upper []float64 `json:"upper"`
}

// ForecastResult is the output of a sprint capacity forecast.
type ForecastResult struct {
	TeamID              string              `json:"team_id"`
	Predictions         []float64           `json:"predictions"`
	ConfidenceIntervals ConfidenceIntervals `json:"confidence_intervals"`
	Confidence          float64             `json:"confidence"` // [0,1]
	Trend               string              `json:"trend"`
	SeasonalAdjusted    bool                `json:"seasonal_adjusted"`
}

// Engine runs the predictive models over collected team history.
type Engine struct {
	collector *collector.Collector
	forecasts *cache.Cache[ForecastResult]
	burnout   *cache.Cache[BurnoutAssessment]
	rng       *rand.Rand
	now       func() time.Time
}

// NewEngine creates an Engine seeded from the wall clock.
func NewEngine(c *collector.Collector) *Engine {
	return &Engine{
		collector: c,
		forecasts: cache.New[ForecastResult](cache.TTLDefault),
		burnout:   cache.New[BurnoutAssessment](cache.TTLStable),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
	}
}

// ForecastSprintCapacity forecasts team capacity for the next sprints by
// combining linear, seasonal and moving-average models with fixed weights.
// Requires at least 3 historical sprint-capacity points.
func (e *Engine) ForecastSprintCapacity(ctx context.Context, teamID string, sprintsAhead int) (ForecastResult, error) {
	if sprintsAhead <= 0 {
		sprintsAhead = 1
	}

	key := fmt.Sprintf("%s|%d", teamID, sprintsAhead)
	if cached, ok := e.forecasts.Get(key); ok {
		return cached, nil
	}

	data, err := e.collector.ProcessTeamData(ctx, teamID)
	if err != nil {
		return ForecastResult{}, err
	}

	series := data.VelocityTrend
	if len(series) < minForecastPoints {
		return ForecastResult{}, fmt.Errorf("forecast %s needs >= %d sprint capacity points, got %d: %w",
			teamID, minForecastPoints, len(series), stats.ErrInsufficientData)
	}

	result, err := EnsembleForecast(series, sprintsAhead)
	if err != nil {
		return ForecastResult{}, err
	}
	result.TeamID = teamID

	e.forecasts.Set(key, result)
	return result, nil
}

// EnsembleForecast runs the three-model ensemble over a raw capacity series.
func EnsembleForecast(series []float64, steps int) (ForecastResult, error) {
	if len(series) < minForecastPoints {
		return ForecastResult{}, fmt.Errorf("ensemble needs >= %d points, got %d: %w", minForecastPoints, len(series), stats.ErrInsufficientData)
	}

	// 1. Linear model
	fit, err := stats.FitLinear(series)
	if err != nil {
		return ForecastResult{}, err
	}
	linear, _ := fit.Predict(steps)

	// 2. Seasonal model: trend forecast plus the last seasonal cycle. Falls
	// back to the linear forecast when the series has no full cycles.
	seasonal := make([]float64, steps)
	seasonalAdjusted := false
	if d := stats.Decompose(series, seasonalPeriod); d != nil {
		cycle := d.LastCycle()
		for i := 0; i < steps; i++ {
			seasonal[i] = linear[i] + cycle[i%len(cycle)]
		}
		seasonalAdjusted = true
	} else {
		copy(seasonal, linear)
	}

	// 3. Moving-average model
	window := seasonalPeriod - 1
	if len(series) < window {
		window = len(series)
	}
	ma, maConfidence, err := stats.MovingAverageForecast(series, window, steps)
	if err != nil {
		return ForecastResult{}, err
	}

	// 4. Combine with fixed weights and widen intervals with the horizon
	predictions := make([]float64, steps)
	lower := make([]float64, steps)
	upper := make([]float64, steps)
	spread := 1.96 * stats.StdDev(series)
	confidenceSum := 0.0

	for i := 0; i < steps; i++ {
		predictions[i] = stats.Round2(weightLinear*linear[i] + weightSeasonal*seasonal[i] + weightMovingAverage*ma[i])
		if predictions[i] < 0 {
			predictions[i] = 0
		}

		stepConfidence := StepConfidence(i + 1)
		confidenceSum += stepConfidence

		margin := spread * (1.1 - stepConfidence)
		lower[i] = stats.Round2(predictions[i] - margin)
		if lower[i] < 0 {
			lower[i] = 0
		}
		upper[i] = stats.Round2(predictions[i] + margin)
	}

	confidence := stats.Clamp01(confidenceSum / float64(steps) * (0.6 + 0.4*maConfidence))

	return ForecastResult{
		Predictions:         predictions,
		ConfidenceIntervals: ConfidenceIntervals{Lower: lower, Upper: upper},
		Confidence:          stats.Round2(confidence),
		Trend:               fit.Trend(),
		SeasonalAdjusted:    seasonalAdjusted,
	}, nil
}

// StepConfidence decreases with the forecast horizon, floored at 0.1.
func StepConfidence(stepsAhead int) float64 {
	c := 0.9 - 0.15*float64(stepsAhead)
	if c < 0.1 {
		c = 0.1
	}
	return c
}

// InvalidateTeam drops cached forecasts for a team after new data arrives.
func (e *Engine) InvalidateTeam(teamID string) {
	e.forecasts.InvalidateAll()
	e.collector.InvalidateTeam(teamID)
	log.Debug().Str("team", teamID).Msg("Invalidated forecast caches")
}
