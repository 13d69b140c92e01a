// Package capacity computes deterministic capacity and utilization metrics at
// member, team and company granularity.
package capacity

import (
	"context"
	"fmt"
	"math"
	"time"

	"workpulse/internal/cache"
	"workpulse/internal/schedule"
	"workpulse/internal/stats"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Capacity status bands.
const (
	StatusOver    = "over"
	StatusUnder   = "under"
	StatusOptimal = "optimal"
)

// Capacity is the computed capacity of an entity over a date range.
type Capacity struct {
	EntityID           string    `json:"entity_id"`
	Start              time.Time `json:"start"`
	End                time.Time `json:"end"`
	PotentialHours     float64   `json:"potential_hours"`
	ActualHours        float64   `json:"actual_hours"`
	UtilizationPercent float64   `json:"utilization_percent"`
	CapacityGap        float64   `json:"capacity_gap"`
	Status             string    `json:"status"`
}

// CompanyCapacity is the company-wide rollup.
type CompanyCapacity struct {
	Capacity
	Teams []Capacity `json:"teams"`
}

// Options tunes a capacity computation.
type Options struct {
	// AssumeFullDay makes days without a schedule entry count as full working
	// days. Only meant for projecting unknown future days; historical gaps
	// contribute zero hours.
	AssumeFullDay bool
}

// Calculator computes capacity metrics from the roster and schedule readers.
type Calculator struct {
	roster   schedule.RosterReader
	sched    schedule.ScheduleReader
	sprints  schedule.SprintProvider
	workWeek schedule.WorkWeek

	teams *cache.Cache[Capacity]
	now   func() time.Time
}

// NewCalculator creates a Calculator. Pass a nil work week for the default.
func NewCalculator(roster schedule.RosterReader, sched schedule.ScheduleReader, sprints schedule.SprintProvider, ww schedule.WorkWeek) *Calculator {
	if ww == nil {
		ww = schedule.DefaultWorkWeek()
	}
	return &Calculator{
		roster:   roster,
		sched:    sched,
		sprints:  sprints,
		workWeek: ww,
		teams:    cache.New[Capacity](cache.TTLVolatile),
		now:      time.Now,
	}
}

// TeamCapacity computes the capacity of one team over [start, end].
func (c *Calculator) TeamCapacity(ctx context.Context, teamID string, start, end time.Time, opts Options) (Capacity, error) {
	key := fmt.Sprintf("%s|%s|%s|%v", teamID, start.Format(schedule.DateLayout), end.Format(schedule.DateLayout), opts.AssumeFullDay)
	if cached, ok := c.teams.Get(key); ok {
		return cached, nil
	}

	members, err := c.roster.GetTeamMembers(ctx, teamID)
	if err != nil {
		return Capacity{}, fmt.Errorf("team capacity %s: %w", teamID, err)
	}

	entries, err := c.sched.GetScheduleEntries(ctx, start, end, teamID)
	if err != nil {
		return Capacity{}, fmt.Errorf("team capacity %s: %w", teamID, err)
	}

	potential := schedule.PotentialHours(len(members), start, end, c.workWeek)
	actual := 0.0
	for _, m := range members {
		actual += c.actualHours(entries[m.ID], start, end, opts)
	}

	result := c.build(teamID, start, end, potential, actual)
	c.teams.Set(key, result)
	return result, nil
}

// MemberCapacity computes the capacity of a single member over [start, end].
func (c *Calculator) MemberCapacity(ctx context.Context, member schedule.Member, start, end time.Time, opts Options) (Capacity, error) {
	entries, err := c.sched.GetScheduleEntries(ctx, start, end, member.TeamID)
	if err != nil {
		return Capacity{}, fmt.Errorf("member capacity %s: %w", member.ID, err)
	}

	potential := schedule.PotentialHours(1, start, end, c.workWeek)
	actual := c.actualHours(entries[member.ID], start, end, opts)
	return c.build(member.ID, start, end, potential, actual), nil
}

// SprintToDateCapacity computes the current sprint's capacity with the range
// clamped to min(today, sprint end).
func (c *Calculator) SprintToDateCapacity(ctx context.Context, teamID string) (Capacity, error) {
	sprint := c.sprints.CurrentSprint()
	end := sprint.EndDate()
	if today := c.now(); today.Before(end) {
		end = today
	}
	return c.TeamCapacity(ctx, teamID, sprint.StartDate, end, Options{})
}

// CalculateSprintPotential returns the potential hours of a roster over the
// current sprint. Pure and idempotent.
func (c *Calculator) CalculateSprintPotential(memberCount int) float64 {
	sprint := c.sprints.CurrentSprint()
	return schedule.PotentialHours(memberCount, sprint.StartDate, sprint.EndDate(), c.workWeek)
}

// CompanyWideCapacity aggregates capacity across all teams. Per-team
// computations run concurrently; the rollup recomputes utilization from the
// aggregate hours rather than averaging per-team percentages.
func (c *Calculator) CompanyWideCapacity(ctx context.Context, start, end time.Time) (CompanyCapacity, error) {
	teams, err := c.roster.GetTeams(ctx)
	if err != nil {
		return CompanyCapacity{}, fmt.Errorf("company capacity: %w", err)
	}

	results := make([]Capacity, len(teams))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range teams {
		g.Go(func() error {
			tc, err := c.TeamCapacity(gctx, t.ID, start, end, Options{})
			if err != nil {
				return err
			}
			results[i] = tc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CompanyCapacity{}, err
	}

	totalPotential, totalActual := 0.0, 0.0
	for _, r := range results {
		totalPotential += r.PotentialHours
		totalActual += r.ActualHours
	}

	return CompanyCapacity{
		Capacity: c.build("company", start, end, totalPotential, totalActual),
		Teams:    results,
	}, nil
}

func (c *Calculator) actualHours(days map[string]schedule.Entry, start, end time.Time, opts Options) float64 {
	if !opts.AssumeFullDay {
		total := 0.0
		for _, e := range days {
			total += schedule.HoursForValue(e.Value)
		}
		return total
	}

	// Projection mode: unknown days default to a full working day.
	total := 0.0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !c.workWeek[d.Weekday()] {
			continue
		}
		if e, ok := days[d.Format(schedule.DateLayout)]; ok {
			total += schedule.HoursForValue(e.Value)
		} else {
			total += schedule.FullDayHours
		}
	}
	return total
}

func (c *Calculator) build(entityID string, start, end time.Time, potential, actual float64) Capacity {
	utilization := 0.0
	if potential > 0 {
		utilization = actual / potential * 100
	} else if actual > 0 {
		log.Debug().Str("entity", entityID).Msg("Actual hours recorded against zero potential")
	}

	return Capacity{
		EntityID:           entityID,
		Start:              start,
		End:                end,
		PotentialHours:     potential,
		ActualHours:        actual,
		UtilizationPercent: stats.Round2(utilization),
		CapacityGap:        stats.Round2(potential - actual),
		Status:             CapacityStatus(utilization),
	}
}

// CapacityStatus bands a utilization percentage.
func CapacityStatus(utilization float64) string {
	switch {
	case utilization > 100:
		return StatusOver
	case utilization < 80:
		return StatusUnder
	default:
		return StatusOptimal
	}
}

// CompletionPercentage is the rounded share of potential hours actually
// worked. Zero potential yields 0, never a division error.
func CompletionPercentage(actual, potential float64) int {
	if potential <= 0 {
		return 0
	}
	return int(math.Round(actual / potential * 100))
}
