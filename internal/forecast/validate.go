package forecast

import (
	"context"
	"fmt"
	"math"

	"workpulse/internal/stats"
)

// minValidationPoints is the smallest series a walk-forward validation can
// split into training and holdout slices.
const minValidationPoints = 6

// ValidationReport summarizes walk-forward accuracy of the ensemble.
type ValidationReport struct {
	TeamID          string  `json:"team_id"`
	Checkpoints     int     `json:"checkpoints"`
	MeanAbsoluteErr float64 `json:"mean_absolute_error"`
	MAPE            float64 `json:"mape"` // mean absolute percentage error
	IntervalHitRate float64 `json:"interval_hit_rate"`
}

// ValidateForecasts walk-forward validates the ensemble against a team's own
// history: at each checkpoint the models are fit on the prefix and the next
// observed value is compared to the one-step forecast.
func (e *Engine) ValidateForecasts(ctx context.Context, teamID string) (ValidationReport, error) {
	data, err := e.collector.ProcessTeamData(ctx, teamID)
	if err != nil {
		return ValidationReport{}, err
	}
	return WalkForward(teamID, data.VelocityTrend)
}

// WalkForward runs the validation over a raw capacity series.
func WalkForward(teamID string, series []float64) (ValidationReport, error) {
	if len(series) < minValidationPoints {
		return ValidationReport{}, fmt.Errorf("validation for %s needs >= %d points, got %d: %w",
			teamID, minValidationPoints, len(series), stats.ErrInsufficientData)
	}

	start := len(series) / 2
	if start < minForecastPoints {
		start = minForecastPoints
	}

	checkpoints := 0
	hits := 0
	sumAbsErr := 0.0
	sumPctErr := 0.0

	for i := start; i < len(series); i++ {
		result, err := EnsembleForecast(series[:i], 1)
		if err != nil {
			continue
		}
		predicted := result.Predictions[0]
		actual := series[i]

		checkpoints++
		absErr := math.Abs(predicted - actual)
		sumAbsErr += absErr
		if actual != 0 {
			sumPctErr += absErr / math.Abs(actual)
		}
		if actual >= result.ConfidenceIntervals.Lower[0] && actual <= result.ConfidenceIntervals.Upper[0] {
			hits++
		}
	}

	if checkpoints == 0 {
		return ValidationReport{}, fmt.Errorf("validation for %s produced no checkpoints: %w", teamID, stats.ErrInsufficientData)
	}

	return ValidationReport{
		TeamID:          teamID,
		Checkpoints:     checkpoints,
		MeanAbsoluteErr: stats.Round2(sumAbsErr / float64(checkpoints)),
		MAPE:            stats.Round2(sumPctErr / float64(checkpoints)),
		IntervalHitRate: stats.Round2(float64(hits) / float64(checkpoints)),
	}, nil
}
