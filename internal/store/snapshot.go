package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"workpulse/internal/schedule"

	"github.com/rs/zerolog/log"
)

// SnapshotStore provides thread-safe, chronological storage for collected
// HistoricalDataPoints, partitioned by team. It keeps collected history warm
// across runs via JSONL files in the cache directory.
type SnapshotStore struct {
	mu     sync.RWMutex
	points map[string][]schedule.HistoricalDataPoint // partitioned by TeamID
}

// NewSnapshotStore creates an empty SnapshotStore.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		points: make(map[string][]schedule.HistoricalDataPoint),
	}
}

func identity(p schedule.HistoricalDataPoint) string {
	return fmt.Sprintf("%s|%s|%s|%d", p.TeamID, p.MemberID, p.Date.Format(schedule.DateLayout), p.SprintNumber)
}

// Append adds points for a team, deduplicating on member/date/sprint and
// keeping the partition in chronological order.
func (s *SnapshotStore) Append(teamID string, points []schedule.HistoricalDataPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]bool)
	for _, p := range s.points[teamID] {
		existing[identity(p)] = true
	}

	part := s.points[teamID]
	newCount := 0
	for _, p := range points {
		if !existing[identity(p)] {
			part = append(part, p)
			existing[identity(p)] = true
			newCount++
		}
	}

	if newCount == 0 {
		return
	}

	sort.Slice(part, func(i, j int) bool {
		if !part[i].Date.Equal(part[j].Date) {
			return part[i].Date.Before(part[j].Date)
		}
		return part[i].MemberID < part[j].MemberID
	})

	s.points[teamID] = part
}

// GetRange returns the points for a team whose date falls in [start, end].
func (s *SnapshotStore) GetRange(teamID string, start, end time.Time) []schedule.HistoricalDataPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []schedule.HistoricalDataPoint
	for _, p := range s.points[teamID] {
		if !p.Date.Before(start) && !p.Date.After(end) {
			out = append(out, p)
		}
	}
	return out
}

// GetAll returns every stored point for a team.
func (s *SnapshotStore) GetAll(teamID string) []schedule.HistoricalDataPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]schedule.HistoricalDataPoint, len(s.points[teamID]))
	copy(out, s.points[teamID])
	return out
}

// Load reads points from a JSONL snapshot file for the given team.
func (s *SnapshotStore) Load(cacheDir, teamID string) error {
	path := filepath.Join(cacheDir, fmt.Sprintf("%s.jsonl", teamID))
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No snapshot yet, not an error
		}
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer file.Close()

	var points []schedule.HistoricalDataPoint
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var p schedule.HistoricalDataPoint
		if err := json.Unmarshal(scanner.Bytes(), &p); err != nil {
			log.Warn().Err(err).Str("team", teamID).Msg("Skipping invalid JSON line in snapshot")
			continue
		}
		points = append(points, p)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading snapshot: %w", err)
	}

	log.Info().Str("team", teamID).Int("count", len(points)).Msg("Loaded history snapshot")
	s.Append(teamID, points)
	return nil
}

// Save persists a team's points to a JSONL snapshot file.
func (s *SnapshotStore) Save(cacheDir, teamID string) error {
	s.mu.RLock()
	points := s.points[teamID]
	s.mu.RUnlock()

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	path := filepath.Join(cacheDir, fmt.Sprintf("%s.jsonl", teamID))
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, p := range points {
		line, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal point: %w", err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}

	log.Debug().Str("team", teamID).Int("count", len(points)).Msg("Saved history snapshot")
	return nil
}
