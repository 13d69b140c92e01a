package capacity

import (
	"context"
	"math"
	"testing"
	"time"

	"workpulse/internal/schedule"
)

type fakeSource struct {
	teams   []schedule.Team
	members map[string][]schedule.Member
	entries schedule.EntrySet
	sprint  schedule.Sprint
}

func (f *fakeSource) GetTeams(ctx context.Context) ([]schedule.Team, error) {
	return f.teams, nil
}

func (f *fakeSource) GetTeamMembers(ctx context.Context, teamID string) ([]schedule.Member, error) {
	if teamID == "" {
		var all []schedule.Member
		for _, ms := range f.members {
			all = append(all, ms...)
		}
		return all, nil
	}
	ms, ok := f.members[teamID]
	if !ok {
		return nil, schedule.ErrNotFound
	}
	return ms, nil
}

func (f *fakeSource) GetScheduleEntries(ctx context.Context, start, end time.Time, teamID string) (schedule.EntrySet, error) {
	out := make(schedule.EntrySet)
	wanted := make(map[string]bool)
	for _, m := range f.members[teamID] {
		wanted[m.ID] = true
	}
	for memberID, days := range f.entries {
		if teamID != "" && !wanted[memberID] {
			continue
		}
		for day, e := range days {
			d, _ := time.Parse(schedule.DateLayout, day)
			if d.Before(start) || d.After(end) {
				continue
			}
			if out[memberID] == nil {
				out[memberID] = make(map[string]schedule.Entry)
			}
			out[memberID][day] = e
		}
	}
	return out, nil
}

func (f *fakeSource) CurrentSprint() schedule.Sprint { return f.sprint }

var sprintStart = time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC) // Sunday

func newFixture() *fakeSource {
	entries := make(schedule.EntrySet)
	fill := func(memberID string, value schedule.ScheduleValue) {
		entries[memberID] = make(map[string]schedule.Entry)
		for d := sprintStart; d.Before(sprintStart.AddDate(0, 0, 14)); d = d.AddDate(0, 0, 1) {
			if !schedule.DefaultWorkWeek()[d.Weekday()] {
				continue
			}
			entries[memberID][d.Format(schedule.DateLayout)] = schedule.Entry{Value: value}
		}
	}
	fill("m1", schedule.ValueFull)
	fill("m2", schedule.ValueHalf)
	fill("m3", schedule.ValueFull)

	return &fakeSource{
		teams: []schedule.Team{{ID: "t1"}, {ID: "t2"}},
		members: map[string][]schedule.Member{
			"t1": {{ID: "m1", TeamID: "t1"}, {ID: "m2", TeamID: "t1"}},
			"t2": {{ID: "m3", TeamID: "t2"}},
		},
		entries: entries,
		sprint:  schedule.Sprint{Number: 10, StartDate: sprintStart, LengthWeeks: 2},
	}
}

func TestTeamCapacity(t *testing.T) {
	src := newFixture()
	c := NewCalculator(src, src, src, nil)

	got, err := c.TeamCapacity(context.Background(), "t1", sprintStart, sprintStart.AddDate(0, 0, 13), Options{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if math.Abs(got.PotentialHours-140) > 0.001 {
		t.Errorf("Expected 140 potential hours, got %v", got.PotentialHours)
	}
	if math.Abs(got.ActualHours-105) > 0.001 {
		t.Errorf("Expected 105 actual hours, got %v", got.ActualHours)
	}
	if math.Abs(got.UtilizationPercent-75) > 0.001 {
		t.Errorf("Expected utilization 75, got %v", got.UtilizationPercent)
	}
	if math.Abs(got.CapacityGap-35) > 0.001 {
		t.Errorf("Expected gap 35, got %v", got.CapacityGap)
	}
	if got.Status != StatusUnder {
		t.Errorf("Expected status under, got %v", got.Status)
	}
}

func TestTeamCapacityMissingEntriesContributeZero(t *testing.T) {
	src := newFixture()
	delete(src.entries, "m2") // m2 has no entries at all
	c := NewCalculator(src, src, src, nil)

	got, err := c.TeamCapacity(context.Background(), "t1", sprintStart, sprintStart.AddDate(0, 0, 13), Options{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(got.ActualHours-70) > 0.001 {
		t.Errorf("Expected missing entries to contribute 0 hours, got %v actual", got.ActualHours)
	}

	// Projection mode fills unknown days with full days instead
	src2 := newFixture()
	delete(src2.entries, "m2")
	c2 := NewCalculator(src2, src2, src2, nil)
	projected, err := c2.TeamCapacity(context.Background(), "t1", sprintStart, sprintStart.AddDate(0, 0, 13), Options{AssumeFullDay: true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(projected.ActualHours-140) > 0.001 {
		t.Errorf("Expected 140 actual hours under AssumeFullDay, got %v", projected.ActualHours)
	}
}

func TestSprintToDateCapacity(t *testing.T) {
	src := newFixture()
	c := NewCalculator(src, src, src, nil)

	// Mid-sprint: only the first week has elapsed
	c.now = func() time.Time { return sprintStart.AddDate(0, 0, 6) } // Saturday of week 1

	got, err := c.SprintToDateCapacity(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// 5 working days elapsed x 2 members x 7h
	if math.Abs(got.PotentialHours-70) > 0.001 {
		t.Errorf("Expected 70 potential hours to date, got %v", got.PotentialHours)
	}

	// After sprint end the range clamps to the sprint window
	c2 := NewCalculator(src, src, src, nil)
	c2.now = func() time.Time { return sprintStart.AddDate(0, 1, 0) }
	got, err = c2.SprintToDateCapacity(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(got.PotentialHours-140) > 0.001 {
		t.Errorf("Expected full-sprint 140 potential hours, got %v", got.PotentialHours)
	}
}

func TestCompanyWideCapacity(t *testing.T) {
	src := newFixture()
	c := NewCalculator(src, src, src, nil)

	got, err := c.CompanyWideCapacity(context.Background(), sprintStart, sprintStart.AddDate(0, 0, 13))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(got.Teams) != 2 {
		t.Fatalf("Expected 2 team results, got %d", len(got.Teams))
	}
	if math.Abs(got.PotentialHours-210) > 0.001 {
		t.Errorf("Expected 210 aggregate potential hours, got %v", got.PotentialHours)
	}
	if math.Abs(got.ActualHours-175) > 0.001 {
		t.Errorf("Expected 175 aggregate actual hours, got %v", got.ActualHours)
	}

	// Utilization must be recomputed from aggregates (175/210 = 83.33),
	// not the average of per-team percentages (75 and 100 -> 87.5).
	if math.Abs(got.UtilizationPercent-83.33) > 0.011 {
		t.Errorf("Expected aggregate utilization 83.33, got %v", got.UtilizationPercent)
	}
}

func TestCapacityStatus(t *testing.T) {
	cases := []struct {
		utilization float64
		expected    string
	}{
		{110, StatusOver},
		{100.5, StatusOver},
		{100, StatusOptimal},
		{80, StatusOptimal},
		{79.9, StatusUnder},
		{0, StatusUnder},
	}
	for _, c := range cases {
		if got := CapacityStatus(c.utilization); got != c.expected {
			t.Errorf("CapacityStatus(%v) = %v, expected %v", c.utilization, got, c.expected)
		}
	}
}

func TestCompletionPercentage(t *testing.T) {
	if got := CompletionPercentage(280, 560); got != 50 {
		t.Errorf("Expected 50, got %v", got)
	}
	if got := CompletionPercentage(600, 560); got != 107 {
		t.Errorf("Expected 107, got %v", got)
	}
	if got := CompletionPercentage(0, 0); got != 0 {
		t.Errorf("Expected 0 for zero potential, got %v", got)
	}
}

func TestCalculateSprintPotentialIdempotent(t *testing.T) {
	src := newFixture()
	c := NewCalculator(src, src, src, nil)

	first := c.CalculateSprintPotential(8)
	if math.Abs(first-560) > 0.001 {
		t.Fatalf("Expected 560, got %v", first)
	}
	for i := 0; i < 1000; i++ {
		if got := c.CalculateSprintPotential(8); got != first {
			t.Fatalf("Iteration %d: expected %v, got %v", i, first, got)
		}
	}
}
