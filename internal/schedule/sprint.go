package schedule

import "time"

// Sprint is a fixed-length planning window over which capacity is tracked.
type Sprint struct {
	Number      int       `json:"number"`
	StartDate   time.Time `json:"start_date"`
	LengthWeeks int       `json:"length_weeks"`
}

// EndDate returns the last day of the sprint (inclusive).
func (s Sprint) EndDate() time.Time {
	weeks := s.LengthWeeks
	if weeks <= 0 {
		weeks = 2
	}
	return s.StartDate.AddDate(0, 0, weeks*7-1)
}

// Contains reports whether t falls inside the sprint window.
func (s Sprint) Contains(t time.Time) bool {
	day := truncateToDay(t)
	return !day.Before(truncateToDay(s.StartDate)) && !day.After(truncateToDay(s.EndDate()))
}

// SprintWindows synthesizes the sequence of sprint windows covering the
// lookback period, oldest first and ending with the current sprint. Sprint
// numbers count down from the current one; numbers below 1 are clamped to
// keep synthetic history addressable.
func SprintWindows(current Sprint, monthsBack int) []Sprint {
	if monthsBack <= 0 {
		return []Sprint{current}
	}

	weeks := current.LengthWeeks
	if weeks <= 0 {
		weeks = 2
	}

	horizon := current.StartDate.AddDate(0, -monthsBack, 0)

	var windows []Sprint
	for cursor := current; !cursor.StartDate.Before(horizon); {
		windows = append(windows, cursor)
		number := cursor.Number - 1
		if number < 1 {
			break
		}
		cursor = Sprint{
			Number:      number,
			StartDate:   cursor.StartDate.AddDate(0, 0, -weeks*7),
			LengthWeeks: weeks,
		}
	}

	// Reverse to chronological order
	for i, j := 0, len(windows)-1; i < j; i, j = i+1, j-1 {
		windows[i], windows[j] = windows[j], windows[i]
	}
	return windows
}
