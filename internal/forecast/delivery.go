package forecast

import (
	"context"
	"fmt"
	"sort"
	"time"

	"workpulse/internal/stats"
)

// deliveryTrials is the number of Monte Carlo iterations per prediction.
const deliveryTrials = 2000

// sprintWorkingDays converts per-sprint velocity into a daily rate.
const sprintWorkingDays = 10.0

// fallbackSprintVelocity is assumed when a team has no usable history.
const fallbackSprintVelocity = 70.0

// BacklogItem is one unit of planned work fed to the delivery simulation.
type BacklogItem struct {
	ID             string  `json:"id"`
	EstimatedHours float64 `json:"estimated_hours"`
	Complexity     float64 `json:"complexity"` // multiplier, 1.0 = nominal
	Dependencies   int     `json:"dependencies"`
}

// DeliveryPrediction reports percentile completion dates from the simulation.
type DeliveryPrediction struct {
	TeamID      string    `json:"team_id"`
	Optimistic  time.Time `json:"optimistic"`  // P10
	Realistic   time.Time `json:"realistic"`   // P50
	Pessimistic time.Time `json:"pessimistic"` // P90
	P10Days     float64   `json:"p10_days"`
	P50Days     float64   `json:"p50_days"`
	P90Days     float64   `json:"p90_days"`
	Trials      int       `json:"trials"`
}

// PredictDeliveryDate runs a Monte Carlo simulation of backlog completion.
// Each trial varies item effort by +/-20%, scales it by complexity and
// dependency count, samples daily velocity from the team's historical
// distribution adjusted by the upcoming seasonal component, and applies a
// 15-25% coordination overhead. Percentile days are taken over the sorted
// trial outcomes.
func (e *Engine) PredictDeliveryDate(ctx context.Context, teamID string, items []BacklogItem) (DeliveryPrediction, error) {
	if len(items) == 0 {
		return DeliveryPrediction{}, fmt.Errorf("delivery prediction for %s: empty backlog", teamID)
	}

	velocityMean, velocityStdDev, seasonal := e.teamVelocity(ctx, teamID)
	dailyMean := velocityMean / sprintWorkingDays
	dailyStdDev := velocityStdDev / sprintWorkingDays
	velocityFloor := dailyMean * 0.2
	if velocityFloor < 1.0 {
		velocityFloor = 1.0
	}

	days := make([]float64, deliveryTrials)
	for i := 0; i < deliveryTrials; i++ {
		days[i] = e.simulateDelivery(items, dailyMean, dailyStdDev, seasonal, velocityFloor)
	}
	sort.Float64s(days)

	p10 := days[int(float64(deliveryTrials)*0.10)]
	p50 := days[int(float64(deliveryTrials)*0.50)]
	p90 := days[int(float64(deliveryTrials)*0.90)]

	now := e.now()
	return DeliveryPrediction{
		TeamID:      teamID,
		Optimistic:  addWorkingDays(now, p10),
		Realistic:   addWorkingDays(now, p50),
		Pessimistic: addWorkingDays(now, p90),
		P10Days:     stats.Round2(p10),
		P50Days:     stats.Round2(p50),
		P90Days:     stats.Round2(p90),
		Trials:      deliveryTrials,
	}, nil
}

func (e *Engine) simulateDelivery(items []BacklogItem, dailyMean, dailyStdDev, seasonal, velocityFloor float64) float64 {
	// 1. Total effort with per-item variation
	totalHours := 0.0
	for _, item := range items {
		complexity := item.Complexity
		if complexity <= 0 {
			complexity = 1.0
		}
		effort := item.EstimatedHours * complexity
		effort *= 1.0 + 0.1*float64(item.Dependencies)
		effort *= 0.8 + 0.4*e.rng.Float64() // +/-20%
		totalHours += effort
	}

	// 2. Daily velocity sampled around the seasonally adjusted mean
	velocity := (dailyMean + e.rng.NormFloat64()*dailyStdDev) * seasonal
	if velocity < velocityFloor {
		velocity = velocityFloor
	}

	// 3. Coordination overhead of 15-25%
	overhead := 1.15 + 0.10*e.rng.Float64()

	return totalHours / velocity * overhead
}

// teamVelocity returns the mean and standard deviation of the team's
// per-sprint delivered hours plus the seasonal adjustment factor for the
// sprint ahead, falling back to a nominal single-member velocity for teams
// with no usable history.
func (e *Engine) teamVelocity(ctx context.Context, teamID string) (float64, float64, float64) {
	data, err := e.collector.ProcessTeamData(ctx, teamID)
	if err != nil || len(data.VelocityTrend) == 0 {
		return fallbackSprintVelocity, fallbackSprintVelocity * 0.2, 1.0
	}
	mean := stats.Mean(data.VelocityTrend)
	if mean <= 0 {
		return fallbackSprintVelocity, fallbackSprintVelocity * 0.2, 1.0
	}
	seasonal := seasonalFactor(data.SeasonalPatterns, len(data.VelocityTrend))
	return mean, stats.StdDev(data.VelocityTrend), seasonal
}

// seasonalFactor turns the seasonal utilization component for cycle position
// n into a multiplicative velocity adjustment, kept within half and one and
// a half times the baseline.
func seasonalFactor(patterns []float64, n int) float64 {
	if len(patterns) == 0 {
		return 1.0
	}
	f := 1.0 + patterns[n%len(patterns)]/100.0
	switch {
	case f < 0.5:
		return 0.5
	case f > 1.5:
		return 1.5
	}
	return f
}

// addWorkingDays advances a date by elapsed working days, skipping a
// two-day weekend for every five worked.
func addWorkingDays(from time.Time, workingDays float64) time.Time {
	calendarDays := workingDays * 7.0 / 5.0
	return from.AddDate(0, 0, int(calendarDays)+1)
}
