package performance

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"workpulse/internal/collector"
	"workpulse/internal/schedule"
	"workpulse/internal/stats"
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

func newFixture() *fakeSource {
	sprintStart := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	entries := make(schedule.EntrySet)

	// Six sprints of history for both members of t1
	for _, memberID := range []string{"m1", "m2"} {
		entries[memberID] = make(map[string]schedule.Entry)
		for s := 0; s < 6; s++ {
			windowStart := sprintStart.AddDate(0, 0, -14*s)
			for d := windowStart; d.Before(windowStart.AddDate(0, 0, 14)); d = d.AddDate(0, 0, 1) {
				if !schedule.DefaultWorkWeek()[d.Weekday()] {
					continue
				}
				entries[memberID][d.Format(schedule.DateLayout)] = schedule.Entry{Value: schedule.ValueFull}
			}
		}
	}

	return &fakeSource{
		teams: []schedule.Team{{ID: "t1"}, {ID: "empty"}},
		members: map[string][]schedule.Member{
			"t1":    {{ID: "m1", TeamID: "t1"}, {ID: "m2", TeamID: "t1"}},
			"empty": {},
		},
		entries: entries,
		sprint:  schedule.Sprint{Number: 10, StartDate: sprintStart, LengthWeeks: 2},
	}
}

func TestCalculateTeamPerformance(t *testing.T) {
	src := newFixture()
	a := NewAggregator(collector.NewCollector(src, src, src, nil), src)

	got, err := a.CalculateTeamPerformance(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Fully staffed, fully utilized, stable roster
	if got.Stability != 100 {
		t.Errorf("Expected stability 100 for an unchanged roster, got %v", got.Stability)
	}
	if got.RetentionRatio != 1 {
		t.Errorf("Expected retention 1, got %v", got.RetentionRatio)
	}
	if got.Quality != placeholderQualityScore {
		t.Errorf("Expected placeholder quality score, got %v", got.Quality)
	}
	// Four empty sprints plus six fully utilized ones average out to 60%.
	if got.AvgUtilization != 60 {
		t.Errorf("Expected raw average utilization 60, got %v", got.AvgUtilization)
	}
	if got.Composite < 60 || got.Composite > 100 {
		t.Errorf("Composite out of range: %v", got.Composite)
	}
	if got.Category != Categorize(got.Composite) {
		t.Errorf("Category %v does not match composite %v", got.Category, got.Composite)
	}

	// Composite must equal the documented weighted sum
	expected := stats.Round2(got.Velocity*0.25 + got.Utilization*0.20 + got.Stability*0.20 + got.Efficiency*0.20 + got.Quality*0.15)
	if math.Abs(got.Composite-expected) > 0.001 {
		t.Errorf("Expected composite %v, got %v", expected, got.Composite)
	}
}

func TestCalculateTeamPerformanceInsufficientData(t *testing.T) {
	src := newFixture()
	a := NewAggregator(collector.NewCollector(src, src, src, nil), src)

	if _, err := a.CalculateTeamPerformance(context.Background(), "empty"); !errors.Is(err, stats.ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
}

func TestCalculateCompanyPerformanceSkipsSparseTeams(t *testing.T) {
	src := newFixture()
	a := NewAggregator(collector.NewCollector(src, src, src, nil), src)

	got, err := a.CalculateCompanyPerformance(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got.Teams) != 1 {
		t.Fatalf("Expected the empty team to be skipped, got %d teams", len(got.Teams))
	}
	if got.Composite != got.Teams[0].Composite {
		t.Errorf("Expected company composite %v, got %v", got.Teams[0].Composite, got.Composite)
	}
}

func TestCategorize(t *testing.T) {
	cases := []struct {
		score    float64
		expected string
	}{
		{95, CategoryExcellent},
		{90, CategoryExcellent},
		{85, CategoryGood},
		{75, CategorySatisfactory},
		{65, CategoryNeedsImprovement},
		{30, CategoryPoor},
	}
	for _, c := range cases {
		if got := Categorize(c.score); got != c.expected {
			t.Errorf("Categorize(%v) = %v, expected %v", c.score, got, c.expected)
		}
	}
}

func TestMembershipStability(t *testing.T) {
	d := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	points := []schedule.HistoricalDataPoint{
		{Date: d, MemberID: "m1", SprintNumber: 1},
		{Date: d, MemberID: "m2", SprintNumber: 1},
		{Date: d, MemberID: "m1", SprintNumber: 2},
		{Date: d, MemberID: "m3", SprintNumber: 2},
	}

	retention, changes := membershipStability(points)
	if math.Abs(retention-0.5) > 0.001 {
		t.Errorf("Expected retention 0.5, got %v", retention)
	}

	var removed, added *MembershipChange
	for i := range changes {
		switch changes[i].Kind {
		case "removed":
			removed = &changes[i]
		case "added":
			added = &changes[i]
		}
	}
	if removed == nil || removed.MemberID != "m2" || removed.VelocityImpact != 0.15 {
		t.Errorf("Expected m2 removal with 15%% impact, got %+v", removed)
	}
	if added == nil || added.MemberID != "m3" || added.VelocityImpact != 0.10 {
		t.Errorf("Expected m3 addition with 10%% impact, got %+v", added)
	}

	// Single sprint: perfectly stable by definition
	retention, changes = membershipStability(points[:2])
	if retention != 1 || changes != nil {
		t.Errorf("Expected trivial stability for one sprint, got %v / %v", retention, changes)
	}
}

func TestUtilizationScore(t *testing.T) {
	if got := utilizationScore(90); got != 100 {
		t.Errorf("Expected peak score at 90%%, got %v", got)
	}
	if got := utilizationScore(140); got != 0 {
		t.Errorf("Expected floor at extreme overutilization, got %v", got)
	}
	if utilizationScore(80) != utilizationScore(100) {
		t.Error("Expected symmetric falloff around the optimum")
	}
}
