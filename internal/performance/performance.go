// Package performance rolls team history up into composite performance scores.
package performance

import (
	"context"
	"fmt"
	"math"
	"sort"

	"workpulse/internal/cache"
	"workpulse/internal/collector"
	"workpulse/internal/schedule"
	"workpulse/internal/stats"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Composite weights per metric family. They sum to 1.
const (
	weightVelocity    = 0.25
	weightUtilization = 0.20
	weightStability   = 0.20
	weightEfficiency  = 0.20
	weightQuality     = 0.15
)

// Assumed velocity impact of membership changes.
const (
	additionVelocityImpact = 0.10
	removalVelocityImpact  = 0.15
)

// placeholderQualityScore stands in for a quality sub-score until a defect and
// rework data source is wired up. Kept as a named constant so its removal is
// visible to tests.
const placeholderQualityScore = 75.0

// Performance categories.
const (
	CategoryExcellent        = "excellent"
	CategoryGood             = "good"
	CategorySatisfactory     = "satisfactory"
	CategoryNeedsImprovement = "needs_improvement"
	CategoryPoor             = "poor"
)

// MembershipChange flags a roster change between consecutive sprints with its
// assumed velocity impact.
type MembershipChange struct {
	SprintNumber   int     `json:"sprint_number"`
	MemberID       string  `json:"member_id"`
	Kind           string  `json:"kind"` // "added" or "removed"
	VelocityImpact float64 `json:"velocity_impact"`
}

// TeamPerformance is the per-team scorecard. Utilization is the scored
// sub-metric (peaks when average utilization sits at the healthy target);
// AvgUtilization carries the raw average percentage for consumers that need
// the underlying figure rather than the score.
type TeamPerformance struct {
	TeamID         string  `json:"team_id"`
	Velocity       float64 `json:"velocity"`
	Utilization    float64 `json:"utilization"`
	AvgUtilization float64 `json:"avg_utilization"`
	Stability      float64 `json:"stability"`
	Efficiency     float64 `json:"efficiency"`
	Quality        float64 `json:"quality"`
	Composite      float64 `json:"composite"`
	Category       string  `json:"category"`

	RetentionRatio    float64            `json:"retention_ratio"`
	MembershipChanges []MembershipChange `json:"membership_changes,omitempty"`
}

// CompanyPerformance is the company-wide rollup.
type CompanyPerformance struct {
	Teams     []TeamPerformance `json:"teams"`
	Composite float64           `json:"composite"`
	Category  string            `json:"category"`
}

// Aggregator computes performance scorecards from processed team data.
type Aggregator struct {
	collector *collector.Collector
	roster    schedule.RosterReader
	results   *cache.Cache[TeamPerformance]
}

// NewAggregator creates an Aggregator.
func NewAggregator(c *collector.Collector, roster schedule.RosterReader) *Aggregator {
	return &Aggregator{
		collector: c,
		roster:    roster,
		results:   cache.New[TeamPerformance](cache.TTLDefault),
	}
}

// CalculateTeamPerformance scores one team. Teams without any cleaned history
// yield ErrInsufficientData.
func (a *Aggregator) CalculateTeamPerformance(ctx context.Context, teamID string) (TeamPerformance, error) {
	if cached, ok := a.results.Get(teamID); ok {
		return cached, nil
	}

	data, err := a.collector.ProcessTeamData(ctx, teamID)
	if err != nil {
		return TeamPerformance{}, err
	}
	if len(data.HistoricalData) < 1 {
		return TeamPerformance{}, fmt.Errorf("team %s has no cleaned data points: %w", teamID, stats.ErrInsufficientData)
	}

	retention, changes := membershipStability(data.HistoricalData)

	result := TeamPerformance{
		TeamID:            teamID,
		Velocity:          velocityScore(data.VelocityTrend),
		Utilization:       utilizationScore(data.AvgUtilization),
		AvgUtilization:    stats.Round2(data.AvgUtilization),
		Stability:         stats.Round2(retention * 100),
		Efficiency:        efficiencyScore(data.HistoricalData),
		Quality:           placeholderQualityScore,
		RetentionRatio:    stats.Round2(retention),
		MembershipChanges: changes,
	}

	result.Composite = stats.Round2(
		result.Velocity*weightVelocity +
			result.Utilization*weightUtilization +
			result.Stability*weightStability +
			result.Efficiency*weightEfficiency +
			result.Quality*weightQuality)
	result.Category = Categorize(result.Composite)

	a.results.Set(teamID, result)
	return result, nil
}

// CalculateCompanyPerformance scores every team concurrently and averages the
// composites. Teams without enough history are skipped with a log entry so a
// single sparse team cannot abort the rollup.
func (a *Aggregator) CalculateCompanyPerformance(ctx context.Context) (CompanyPerformance, error) {
	teams, err := a.roster.GetTeams(ctx)
	if err != nil {
		return CompanyPerformance{}, fmt.Errorf("company performance: %w", err)
	}

	results := make([]*TeamPerformance, len(teams))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range teams {
		g.Go(func() error {
			tp, err := a.CalculateTeamPerformance(gctx, t.ID)
			if err != nil {
				log.Warn().Err(err).Str("team", t.ID).Msg("Skipping team in company performance rollup")
				return nil
			}
			results[i] = &tp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CompanyPerformance{}, err
	}

	company := CompanyPerformance{}
	sum := 0.0
	for _, r := range results {
		if r == nil {
			continue
		}
		company.Teams = append(company.Teams, *r)
		sum += r.Composite
	}

	if len(company.Teams) > 0 {
		company.Composite = stats.Round2(sum / float64(len(company.Teams)))
	}
	company.Category = Categorize(company.Composite)
	return company, nil
}

// Categorize bands a composite score.
func Categorize(score float64) string {
	switch {
	case score >= 90:
		return CategoryExcellent
	case score >= 80:
		return CategoryGood
	case score >= 70:
		return CategorySatisfactory
	case score >= 60:
		return CategoryNeedsImprovement
	default:
		return CategoryPoor
	}
}

// velocityScore rewards a stable or rising sprint velocity.
func velocityScore(velocity []float64) float64 {
	if len(velocity) == 0 {
		return 0
	}

	base := 70.0
	fit, err := stats.FitLinear(velocity)
	if err != nil {
		return base
	}

	switch fit.Trend() {
	case stats.TrendIncreasing:
		base = 85
	case stats.TrendDecreasing:
		base = 55
	}

	// Predictable delivery earns the remaining points
	if mean := stats.Mean(velocity); mean > 0 {
		cv := stats.StdDev(velocity) / mean
		base += 15 * (1 - math.Min(1, cv))
	}
	return stats.Round2(math.Min(100, base))
}

// utilizationScore peaks at the optimal band and falls off on both sides.
func utilizationScore(avgUtilization float64) float64 {
	const optimal = 90.0
	distance := math.Abs(avgUtilization - optimal)
	score := 100 - distance*2
	if score < 0 {
		score = 0
	}
	return stats.Round2(score)
}

// efficiencyScore measures how much of the planned hours became actual hours
// without overshooting.
func efficiencyScore(points []schedule.HistoricalDataPoint) float64 {
	var planned, actual float64
	for _, p := range points {
		planned += p.PlannedHours
		actual += p.ActualHours
	}
	if planned <= 0 {
		return 0
	}

	ratio := actual / planned
	if ratio > 1 {
		// Overshoot is capped, not rewarded
		ratio = math.Max(0, 2-ratio)
	}
	return stats.Round2(math.Min(100, ratio*100))
}

// membershipStability computes the average sprint-over-sprint retention ratio
// and flags every addition and removal with its assumed velocity impact.
func membershipStability(points []schedule.HistoricalDataPoint) (float64, []MembershipChange) {
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
		return 1, nil
	}

	var changes []MembershipChange
	totalRetention := 0.0
	for i := 1; i < len(sprints); i++ {
		prev := bySprint[sprints[i-1]]
		curr := bySprint[sprints[i]]

		retained := 0
		for m := range prev {
			if curr[m] {
				retained++
			} else {
				changes = append(changes, MembershipChange{
					SprintNumber:   sprints[i],
					MemberID:       m,
					Kind:           "removed",
					VelocityImpact: removalVelocityImpact,
				})
			}
		}
		for m := range curr {
			if !prev[m] {
				changes = append(changes, MembershipChange{
					SprintNumber:   sprints[i],
					MemberID:       m,
					Kind:           "added",
					VelocityImpact: additionVelocityImpact,
				})
			}
		}

		if len(prev) > 0 {
			totalRetention += float64(retained) / float64(len(prev))
		} else {
			totalRetention += 1
		}
	}

	return totalRetention / float64(len(sprints)-1), changes
}
