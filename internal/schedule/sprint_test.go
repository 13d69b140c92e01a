package schedule

import (
	"testing"
	"time"
)

func TestSprintEndDate(t *testing.T) {
	s := Sprint{Number: 42, StartDate: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), LengthWeeks: 2}
	expected := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)
	if !s.EndDate().Equal(expected) {
		t.Errorf("Expected end date %v, got %v", expected, s.EndDate())
	}

	// Zero-length sprints fall back to 2 weeks
	s.LengthWeeks = 0
	if !s.EndDate().Equal(expected) {
		t.Errorf("Expected fallback end date %v, got %v", expected, s.EndDate())
	}
}

func TestSprintContains(t *testing.T) {
	s := Sprint{Number: 1, StartDate: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), LengthWeeks: 2}

	if !s.Contains(s.StartDate) {
		t.Error("Expected sprint to contain its start date")
	}
	if !s.Contains(time.Date(2024, 3, 16, 23, 0, 0, 0, time.UTC)) {
		t.Error("Expected sprint to contain its last day")
	}
	if s.Contains(time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC)) {
		t.Error("Expected sprint to exclude the day after its end")
	}
}

func TestSprintWindows(t *testing.T) {
	current := Sprint{Number: 20, StartDate: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), LengthWeeks: 2}

	windows := SprintWindows(current, 3)
	if len(windows) == 0 {
		t.Fatal("Expected at least one window")
	}

	// Chronological order, ending at the current sprint
	last := windows[len(windows)-1]
	if last.Number != 20 {
		t.Errorf("Expected last window to be the current sprint, got %v", last.Number)
	}
	for i := 1; i < len(windows); i++ {
		if !windows[i].StartDate.After(windows[i-1].StartDate) {
			t.Errorf("Windows out of order at index %d", i)
		}
		if windows[i].Number != windows[i-1].Number+1 {
			t.Errorf("Sprint numbers not consecutive at index %d", i)
		}
	}

	// ~3 months of 2-week sprints is 6-7 windows
	if len(windows) < 6 || len(windows) > 8 {
		t.Errorf("Expected 6-8 windows over 3 months, got %v", len(windows))
	}

	// Sprint numbers never go below 1
	windows = SprintWindows(Sprint{Number: 2, StartDate: current.StartDate, LengthWeeks: 2}, 6)
	for _, w := range windows {
		if w.Number < 1 {
			t.Errorf("Sprint number below 1: %v", w.Number)
		}
	}
}
