package schedule

import (
	"context"
	"time"
)

// ScheduleValue is the per-day availability of a member.
type ScheduleValue string

const (
	ValueFull   ScheduleValue = "full"
	ValueHalf   ScheduleValue = "half"
	ValueAbsent ScheduleValue = "absent"
)

// DateLayout is the canonical day key used across the engine.
const DateLayout = "2006-01-02"

// Team is a unit of the roster.
type Team struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	LeadID string `json:"lead_id,omitempty"`
}

// Member is a single person on the roster.
type Member struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	TeamID   string    `json:"team_id"`
	Role     string    `json:"role,omitempty"`
	JoinedAt time.Time `json:"joined_at,omitempty"`
}

// Entry is a single schedule record for one member on one day.
type Entry struct {
	Value     ScheduleValue `json:"value"`
	Reason    string        `json:"reason,omitempty"`
	CreatedAt time.Time     `json:"created_at,omitempty"`
	UpdatedAt time.Time     `json:"updated_at,omitempty"`
}

// EntrySet holds schedule entries keyed by member ID, then by day (DateLayout).
type EntrySet map[string]map[string]Entry

// HistoricalDataPoint is one member/sprint observation produced by the collector.
// Immutable once created.
type HistoricalDataPoint struct {
	Date         time.Time `json:"date"`
	TeamID       string    `json:"team_id"`
	MemberID     string    `json:"member_id"`
	PlannedHours float64   `json:"planned_hours"`
	ActualHours  float64   `json:"actual_hours"`
	Utilization  float64   `json:"utilization"`
	SprintNumber int       `json:"sprint_number"`
}

// RosterReader is the consumed interface to the external roster store.
type RosterReader interface {
	GetTeams(ctx context.Context) ([]Team, error)
	// GetTeamMembers returns the members of one team, or all members when
	// teamID is empty.
	GetTeamMembers(ctx context.Context, teamID string) ([]Member, error)
}

// ScheduleReader is the consumed interface to the external schedule store.
type ScheduleReader interface {
	GetScheduleEntries(ctx context.Context, start, end time.Time, teamID string) (EntrySet, error)
}

// SprintProvider yields the current sprint descriptor.
type SprintProvider interface {
	CurrentSprint() Sprint
}
