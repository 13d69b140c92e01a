package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"workpulse/internal/schedule"
)

// Directory is a file-backed implementation of the roster and schedule read
// interfaces. The persistent record store for teams, members and schedule
// entries is an external collaborator; this directory loads an exported JSON
// snapshot of it for CLI and test use.
type Directory struct {
	Teams   []schedule.Team   `json:"teams"`
	Members []schedule.Member `json:"members"`
	Sprint  schedule.Sprint   `json:"current_sprint"`
	Entries schedule.EntrySet `json:"entries"`
}

// LoadDirectory reads a directory export from a JSON file.
func LoadDirectory(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory file: %w", err)
	}

	var d Directory
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse directory file: %w", err)
	}
	return &d, nil
}

// GetTeams returns all teams.
func (d *Directory) GetTeams(ctx context.Context) ([]schedule.Team, error) {
	return d.Teams, nil
}

// GetTeamMembers returns the members of one team, or all members when teamID
// is empty. Unknown teams yield ErrNotFound.
func (d *Directory) GetTeamMembers(ctx context.Context, teamID string) ([]schedule.Member, error) {
	if teamID == "" {
		return d.Members, nil
	}

	known := false
	for _, t := range d.Teams {
		if t.ID == teamID {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("team %q: %w", teamID, schedule.ErrNotFound)
	}

	var members []schedule.Member
	for _, m := range d.Members {
		if m.TeamID == teamID {
			members = append(members, m)
		}
	}
	return members, nil
}

// GetScheduleEntries returns entries in [start, end], keyed by member then day.
// When teamID is non-empty only that team's members are included.
func (d *Directory) GetScheduleEntries(ctx context.Context, start, end time.Time, teamID string) (schedule.EntrySet, error) {
	wanted := make(map[string]bool)
	if teamID != "" {
		members, err := d.GetTeamMembers(ctx, teamID)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			wanted[m.ID] = true
		}
	}

	out := make(schedule.EntrySet)
	for memberID, days := range d.Entries {
		if teamID != "" && !wanted[memberID] {
			continue
		}
		for day, entry := range days {
			date, err := time.Parse(schedule.DateLayout, day)
			if err != nil {
				continue
			}
			if date.Before(start) || date.After(end) {
				continue
			}
			if out[memberID] == nil {
				out[memberID] = make(map[string]schedule.Entry)
			}
			out[memberID][day] = entry
		}
	}
	return out, nil
}

// CurrentSprint returns the sprint descriptor from the export.
func (d *Directory) CurrentSprint() schedule.Sprint {
	return d.Sprint
}
