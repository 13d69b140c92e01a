// Package collector fetches raw historical availability data, cleans it and
// aggregates it into per-team datasets for the analytics components downstream.
package collector

import (
	"context"
	"fmt"
	"math"
	"time"

	"workpulse/internal/cache"
	"workpulse/internal/schedule"
	"workpulse/internal/stats"

	"github.com/rs/zerolog/log"
)

// Utilization bounds: raw points are clamped to [0, maxRawUtilization] before
// cleaning and capped at maxCleanUtilization after.
const (
	maxRawUtilization   = 300.0
	maxCleanUtilization = 200.0
)

// seasonalPeriod is the sprint count of one seasonal cycle.
const seasonalPeriod = 4

// HistorySink receives collected points for persistence. The snapshot store
// satisfies this.
type HistorySink interface {
	Append(teamID string, points []schedule.HistoricalDataPoint)
}

// ProcessedTeamData is the per-team aggregate consumed by the calculators and
// models. It is recomputed wholesale on each analytics cycle and never
// partially mutated.
type ProcessedTeamData struct {
	TeamID           string                         `json:"team_id"`
	HistoricalData   []schedule.HistoricalDataPoint `json:"historical_data"`
	MemberCount      int                            `json:"member_count"`
	AvgUtilization   float64                        `json:"avg_utilization"`
	VelocityTrend    []float64                      `json:"velocity_trend"`    // per-sprint team actual hours
	SeasonalPatterns []float64                      `json:"seasonal_patterns"` // seasonal indices of utilization
	DataQuality      DataQuality                    `json:"data_quality"`
}

// DataQuality scores a dataset along four dimensions, each in [0,1].
type DataQuality struct {
	Completeness float64 `json:"completeness"`
	Consistency  float64 `json:"consistency"`
	Timeliness   float64 `json:"timeliness"`
	Accuracy     float64 `json:"accuracy"`
}

// FeatureVector is the per-team numeric feature set consumed by the risk and
// anomaly models.
type FeatureVector struct {
	AvgUtilization      float64 `json:"avg_utilization"`
	UtilizationStdDev   float64 `json:"utilization_std_dev"`
	VelocityTrendSlope  float64 `json:"velocity_trend_slope"`
	TeamStability       float64 `json:"team_stability"`
	WorkloadVariability float64 `json:"workload_variability"`
	SeasonalIndex       float64 `json:"seasonal_index"`
	HistoricalAccuracy  float64 `json:"historical_accuracy"`
	MemberTurnover      float64 `json:"member_turnover"`
}

// Collector ingests roster and schedule data through the consumed read
// interfaces and turns it into cleaned historical datasets.
type Collector struct {
	roster   schedule.RosterReader
	sched    schedule.ScheduleReader
	sprints  schedule.SprintProvider
	workWeek schedule.WorkWeek
	sink     HistorySink

	processed *cache.Cache[ProcessedTeamData]
}

// Option configures a Collector.
type Option func(*Collector)

// WithSink attaches a history sink that receives every collected point.
func WithSink(sink HistorySink) Option {
	return func(c *Collector) { c.sink = sink }
}

// NewCollector creates a Collector. Pass a nil work week for the default
// Sunday-Thursday week.
func NewCollector(roster schedule.RosterReader, sched schedule.ScheduleReader, sprints schedule.SprintProvider, ww schedule.WorkWeek, opts ...Option) *Collector {
	if ww == nil {
		ww = schedule.DefaultWorkWeek()
	}
	c := &Collector{
		roster:    roster,
		sched:     sched,
		sprints:   sprints,
		workWeek:  ww,
		processed: cache.New[ProcessedTeamData](cache.TTLVolatile),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CollectHistoricalData fetches the roster and a synthesized sequence of
// sprint windows covering the lookback period, then computes planned vs
// actual hours per member and sprint. Raw utilization is clamped to [0,300].
func (c *Collector) CollectHistoricalData(ctx context.Context, teamID string, monthsBack int) ([]schedule.HistoricalDataPoint, error) {
	members, err := c.roster.GetTeamMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", teamID, err)
	}

	windows := schedule.SprintWindows(c.sprints.CurrentSprint(), monthsBack)

	var points []schedule.HistoricalDataPoint
	for _, w := range windows {
		start, end := w.StartDate, w.EndDate()
		entries, err := c.sched.GetScheduleEntries(ctx, start, end, teamID)
		if err != nil {
			log.Warn().Err(err).Str("team", teamID).Int("sprint", w.Number).Msg("Skipping sprint window, schedule fetch failed")
			continue
		}

		planned := schedule.PotentialHours(1, start, end, c.workWeek)
		for _, m := range members {
			actual := 0.0
			for _, entry := range entries[m.ID] {
				actual += schedule.HoursForValue(entry.Value)
			}

			utilization := 0.0
			if planned > 0 {
				utilization = actual / planned * 100
			}
			if utilization < 0 {
				utilization = 0
			}
			if utilization > maxRawUtilization {
				utilization = maxRawUtilization
			}

			points = append(points, schedule.HistoricalDataPoint{
				Date:         start,
				TeamID:       teamID,
				MemberID:     m.ID,
				PlannedHours: planned,
				ActualHours:  actual,
				Utilization:  stats.Round2(utilization),
				SprintNumber: w.Number,
			})
		}
	}

	if c.sink != nil && len(points) > 0 {
		c.sink.Append(teamID, points)
	}

	log.Debug().Str("team", teamID).Int("points", len(points)).Int("sprints", len(windows)).Msg("Collected historical data")
	return points, nil
}

// CleanData removes points with invalid numeric fields or out-of-range
// utilization, and caps the remaining utilization at 200. Bad data never
// raises an error; it is excluded and lowers the quality score instead.
func (c *Collector) CleanData(points []schedule.HistoricalDataPoint) []schedule.HistoricalDataPoint {
	clean := make([]schedule.HistoricalDataPoint, 0, len(points))
	dropped := 0

	for _, p := range points {
		if math.IsNaN(p.PlannedHours) || math.IsNaN(p.ActualHours) || math.IsNaN(p.Utilization) {
			dropped++
			continue
		}
		if p.PlannedHours < 0 || p.ActualHours < 0 {
			dropped++
			continue
		}
		if p.Utilization < 0 || p.Utilization > maxRawUtilization {
			dropped++
			continue
		}

		if p.Utilization > maxCleanUtilization {
			p.Utilization = maxCleanUtilization
		}
		clean = append(clean, p)
	}

	if dropped > 0 {
		log.Debug().Int("dropped", dropped).Int("kept", len(clean)).Msg("Cleaned historical data")
	}
	return clean
}

// now is swapped in tests.
var now = time.Now
