package schedule

import (
	"math"
	"testing"
	"time"
)

func TestHoursForValue(t *testing.T) {
	cases := []struct {
		value    ScheduleValue
		expected float64
	}{
		{ValueFull, 7},
		{ValueHalf, 3.5},
		{ValueAbsent, 0},
		{ScheduleValue("vacation?"), 0},
		{ScheduleValue(""), 0},
	}

	for _, c := range cases {
		if got := HoursForValue(c.value); got != c.expected {
			t.Errorf("HoursForValue(%q) = %v, expected %v", c.value, got, c.expected)
		}
	}
}

func TestWorkingDaysBetween(t *testing.T) {
	ww := DefaultWorkWeek()

	// Sunday 2024-03-03 is a work day
	sunday := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	if got := WorkingDaysBetween(sunday, sunday, ww); got != 1 {
		t.Errorf("Expected single working Sunday to count as 1, got %v", got)
	}

	// Friday and Saturday are off in the default week
	friday := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	if got := WorkingDaysBetween(friday, saturday, ww); got != 0 {
		t.Errorf("Expected Fri-Sat to yield 0 working days, got %v", got)
	}

	// Two full Sun-Thu weeks
	end := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC) // Saturday after 2 weeks
	if got := WorkingDaysBetween(sunday, end, ww); got != 10 {
		t.Errorf("Expected 10 working days over a 2-week sprint, got %v", got)
	}

	// Reversed range
	if got := WorkingDaysBetween(end, sunday, ww); got != 0 {
		t.Errorf("Expected 0 for reversed range, got %v", got)
	}
}

func TestWorkingDaysBetweenBoundaries(t *testing.T) {
	ww := DefaultWorkWeek()

	// Leap year February 2024: 29 days, Feb 1 is a Thursday.
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	// Sun-Thu days in Feb 2024: 21
	if got := WorkingDaysBetween(start, end, ww); got != 21 {
		t.Errorf("Expected 21 working days in leap February, got %v", got)
	}

	// Year boundary: 2023-12-28 (Thu) .. 2024-01-03 (Wed)
	start = time.Date(2023, 12, 28, 0, 0, 0, 0, time.UTC)
	end = time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	// Thu 28, Sun 31, Mon 1, Tue 2, Wed 3 = 5
	if got := WorkingDaysBetween(start, end, ww); got != 5 {
		t.Errorf("Expected 5 working days across year boundary, got %v", got)
	}
}

func TestPotentialHours(t *testing.T) {
	ww := DefaultWorkWeek()
	start := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC) // Sunday
	end := start.AddDate(0, 0, 13)                       // two-week sprint

	if got := PotentialHours(8, start, end, ww); math.Abs(got-560) > 0.001 {
		t.Errorf("Expected 560 potential hours for 8 members over 2 weeks, got %v", got)
	}

	if got := PotentialHours(0, start, end, ww); got != 0 {
		t.Errorf("Expected 0 potential hours for empty roster, got %v", got)
	}

	if got := PotentialHours(-3, start, end, ww); got != 0 {
		t.Errorf("Expected 0 potential hours for negative roster, got %v", got)
	}
}

func TestPotentialHoursIdempotent(t *testing.T) {
	ww := DefaultWorkWeek()
	start := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 13)

	first := PotentialHours(8, start, end, ww)
	for i := 0; i < 1000; i++ {
		if got := PotentialHours(8, start, end, ww); got != first {
			t.Fatalf("Iteration %d: expected %v, got %v", i, first, got)
		}
	}
}

func TestParseWorkWeek(t *testing.T) {
	ww := ParseWorkWeek([]string{"Monday", "tuesday", "bogus", ""})
	if !ww[time.Monday] || !ww[time.Tuesday] {
		t.Errorf("Expected Monday and Tuesday in parsed work week, got %v", ww)
	}
	if len(ww) != 2 {
		t.Errorf("Expected 2 days, got %v", len(ww))
	}

	fallback := ParseWorkWeek(nil)
	if len(fallback) != 5 || !fallback[time.Sunday] || fallback[time.Friday] {
		t.Errorf("Expected Sun-Thu fallback, got %v", fallback)
	}
}
