package collector

import (
	"context"
	"fmt"
	"math"
	"sort"

	"workpulse/internal/schedule"
	"workpulse/internal/stats"
)

// DefaultLookbackMonths is the history horizon used when processing a team.
const DefaultLookbackMonths = 6

// ProcessTeamData collects, cleans and aggregates a team's history into a
// ProcessedTeamData. Results are cached with a short TTL and always replaced
// wholesale.
func (c *Collector) ProcessTeamData(ctx context.Context, teamID string) (ProcessedTeamData, error) {
	if cached, ok := c.processed.Get(teamID); ok {
		return cached, nil
	}

	raw, err := c.CollectHistoricalData(ctx, teamID, DefaultLookbackMonths)
	if err != nil {
		return ProcessedTeamData{}, err
	}
	clean := c.CleanData(raw)

	members := make(map[string]bool)
	utilizations := make([]float64, 0, len(clean))
	for _, p := range clean {
		members[p.MemberID] = true
		utilizations = append(utilizations, p.Utilization)
	}

	data := ProcessedTeamData{
		TeamID:           teamID,
		HistoricalData:   clean,
		MemberCount:      len(members),
		AvgUtilization:   stats.Round2(stats.Mean(utilizations)),
		VelocityTrend:    SprintSeries(clean),
		SeasonalPatterns: seasonalPatterns(clean),
		DataQuality:      c.AssessDataQuality(clean),
	}

	c.processed.Set(teamID, data)
	return data, nil
}

// InvalidateTeam drops the cached dataset for one team.
func (c *Collector) InvalidateTeam(teamID string) {
	c.processed.Invalidate(teamID)
}

// MemberHistory returns the cleaned points of a single member over the
// lookback period. Unknown members yield ErrNotFound.
func (c *Collector) MemberHistory(ctx context.Context, memberID string, monthsBack int) ([]schedule.HistoricalDataPoint, error) {
	all, err := c.roster.GetTeamMembers(ctx, "")
	if err != nil {
		return nil, err
	}

	teamID := ""
	for _, m := range all {
		if m.ID == memberID {
			teamID = m.TeamID
			break
		}
	}
	if teamID == "" {
		return nil, fmt.Errorf("member %q: %w", memberID, schedule.ErrNotFound)
	}

	teamPoints, err := c.CollectHistoricalData(ctx, teamID, monthsBack)
	if err != nil {
		return nil, err
	}

	var points []schedule.HistoricalDataPoint
	for _, p := range c.CleanData(teamPoints) {
		if p.MemberID == memberID {
			points = append(points, p)
		}
	}
	return points, nil
}

// SprintSeries rolls per-member points up into a per-sprint series of team
// actual hours, ordered by sprint number.
func SprintSeries(points []schedule.HistoricalDataPoint) []float64 {
	totals := make(map[int]float64)
	for _, p := range points {
		totals[p.SprintNumber] += p.ActualHours
	}

	sprints := make([]int, 0, len(totals))
	for n := range totals {
		sprints = append(sprints, n)
	}
	sort.Ints(sprints)

	series := make([]float64, 0, len(sprints))
	for _, n := range sprints {
		series = append(series, totals[n])
	}
	return series
}

// UtilizationBySprint returns the mean utilization per sprint, ordered by
// sprint number.
func UtilizationBySprint(points []schedule.HistoricalDataPoint) []float64 {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, p := range points {
		sums[p.SprintNumber] += p.Utilization
		counts[p.SprintNumber]++
	}

	sprints := make([]int, 0, len(sums))
	for n := range sums {
		sprints = append(sprints, n)
	}
	sort.Ints(sprints)

	series := make([]float64, 0, len(sprints))
	for _, n := range sprints {
		series = append(series, sums[n]/float64(counts[n]))
	}
	return series
}

func seasonalPatterns(points []schedule.HistoricalDataPoint) []float64 {
	series := UtilizationBySprint(points)
	d := stats.Decompose(series, seasonalPeriod)
	if d == nil {
		return nil
	}
	return d.LastCycle()
}

// BuildFeatureVector derives the numeric feature set consumed by the risk and
// anomaly models from a processed dataset.
func BuildFeatureVector(data ProcessedTeamData) FeatureVector {
	utilizations := make([]float64, 0, len(data.HistoricalData))
	for _, p := range data.HistoricalData {
		utilizations = append(utilizations, p.Utilization)
	}

	slope := 0.0
	if fit, err := stats.FitLinear(data.VelocityTrend); err == nil {
		slope = fit.Slope
	}

	variability := 0.0
	if mean := stats.Mean(utilizations); mean > 0 {
		variability = stats.StdDev(utilizations) / mean
	}

	seasonalIndex := 0.0
	for _, s := range data.SeasonalPatterns {
		if abs := math.Abs(s); abs > seasonalIndex {
			seasonalIndex = abs
		}
	}

	turnover := memberTurnover(data.HistoricalData)

	return FeatureVector{
		AvgUtilization:      data.AvgUtilization,
		UtilizationStdDev:   stats.Round2(stats.StdDev(utilizations)),
		VelocityTrendSlope:  stats.Round2(slope),
		TeamStability:       stats.Round2(1 - turnover),
		WorkloadVariability: stats.Round2(variability),
		SeasonalIndex:       stats.Round2(seasonalIndex),
		HistoricalAccuracy:  data.DataQuality.Accuracy,
		MemberTurnover:      stats.Round2(turnover),
	}
}

// memberTurnover measures the average sprint-over-sprint share of members who
// left or joined.
func memberTurnover(points []schedule.HistoricalDataPoint) float64 {
	bySprint := make(map[int]map[string]bool)
	for _, p := range points {
		if bySprint[p.SprintNumber] == nil {
			bySprint[p.SprintNumber] = make(map[string]bool)
		}
		bySprint[p.SprintNumber][p.MemberID] = true
	}

	sprints := make([]int, 0, len(bySprint))
	for n := range bySprint {
		sprints = append(sprints, n)
	}
	sort.Ints(sprints)
	if len(sprints) < 2 {
		return 0
	}

	totalChurn := 0.0
	for i := 1; i < len(sprints); i++ {
		prev := bySprint[sprints[i-1]]
		curr := bySprint[sprints[i]]

		changed := 0
		for m := range prev {
			if !curr[m] {
				changed++
			}
		}
		for m := range curr {
			if !prev[m] {
				changed++
			}
		}

		pool := len(prev) + len(curr)
		if pool > 0 {
			totalChurn += float64(changed) / float64(pool)
		}
	}
	return totalChurn / float64(len(sprints)-1)
}
