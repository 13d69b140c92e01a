package collector

import (
	"math"

	"workpulse/internal/schedule"
	"workpulse/internal/stats"
)

// AssessDataQuality scores a dataset along completeness, consistency,
// timeliness and accuracy. Empty input yields all-zero scores, not an error.
func (c *Collector) AssessDataQuality(points []schedule.HistoricalDataPoint) DataQuality {
	if len(points) == 0 {
		return DataQuality{}
	}

	complete := 0
	consistent := 0
	var latest schedule.HistoricalDataPoint
	utilizations := make([]float64, 0, len(points))

	for _, p := range points {
		if p.TeamID != "" && p.MemberID != "" && !p.Date.IsZero() && p.PlannedHours > 0 {
			complete++
		}
		if p.ActualHours >= 0 && p.PlannedHours >= 0 && p.Utilization >= 0 && p.Utilization <= maxRawUtilization &&
			!math.IsNaN(p.ActualHours) && !math.IsNaN(p.Utilization) {
			consistent++
		}
		if p.Date.After(latest.Date) {
			latest = p
		}
		utilizations = append(utilizations, p.Utilization)
	}

	n := float64(len(points))
	daysSinceLatest := now().Sub(latest.Date).Hours() / 24.0
	if daysSinceLatest < 0 {
		daysSinceLatest = 0
	}

	return DataQuality{
		Completeness: stats.Round2(float64(complete) / n),
		Consistency:  stats.Round2(float64(consistent) / n),
		Timeliness:   stats.Round2(1 - math.Min(1, daysSinceLatest/30)),
		Accuracy:     stats.Round2(1 - math.Min(1, stats.Variance(utilizations)/10000)),
	}
}
