package schedule

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Hour values for the three recognized schedule states.
const (
	FullDayHours = 7.0
	HalfDayHours = 3.5
)

// WorkWeek is the set of weekdays that count as working days.
type WorkWeek map[time.Weekday]bool

// DefaultWorkWeek returns the Sunday-Thursday work week.
func DefaultWorkWeek() WorkWeek {
	return WorkWeek{
		time.Sunday:    true,
		time.Monday:    true,
		time.Tuesday:   true,
		time.Wednesday: true,
		time.Thursday:  true,
	}
}

// ParseWorkWeek builds a WorkWeek from weekday names ("sunday", "monday", ...).
// Unknown names are skipped with a warning. An empty result falls back to the
// default work week.
func ParseWorkWeek(names []string) WorkWeek {
	byName := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}

	ww := make(WorkWeek)
	for _, name := range names {
		if d, ok := byName[normalizeDayName(name)]; ok {
			ww[d] = true
		} else if name != "" {
			log.Warn().Str("day", name).Msg("Unknown weekday name in work week config, skipping")
		}
	}

	if len(ww) == 0 {
		return DefaultWorkWeek()
	}
	return ww
}

func normalizeDayName(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c == ' ' || c == '\t' {
			continue
		}
		b = append(b, c)
	}
	return string(b)
}

// HoursForValue maps a schedule value to hours. Unrecognized values degrade
// to zero hours rather than failing the whole computation.
func HoursForValue(value ScheduleValue) float64 {
	switch value {
	case ValueFull:
		return FullDayHours
	case ValueHalf:
		return HalfDayHours
	case ValueAbsent:
		return 0
	default:
		log.Warn().Str("value", string(value)).Msg("Unrecognized schedule value, counting as 0 hours")
		return 0
	}
}

// WorkingDaysBetween counts the days in [start, end] (inclusive) whose weekday
// falls inside the work week. Returns 0 when end is before start.
func WorkingDaysBetween(start, end time.Time, ww WorkWeek) int {
	startDay := truncateToDay(start)
	endDay := truncateToDay(end)
	if endDay.Before(startDay) {
		return 0
	}

	count := 0
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		if ww[d.Weekday()] {
			count++
		}
	}
	return count
}

// PotentialHours is the theoretical maximum: members x working days x full day.
func PotentialHours(memberCount int, start, end time.Time, ww WorkWeek) float64 {
	if memberCount <= 0 {
		return 0
	}
	return float64(memberCount) * float64(WorkingDaysBetween(start, end, ww)) * FullDayHours
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
