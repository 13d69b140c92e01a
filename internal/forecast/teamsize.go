package forecast

import (
	"math"

	"workpulse/internal/stats"
)

// Team size bounds. Recommendations never leave this range.
const (
	minTeamSize = 2
	maxTeamSize = 12
)

// sustainableWeeklyHours is the per-member weekly throughput assumed by the
// workload model: five working days at 7 hours each.
const sustainableWeeklyHours = 35.0

// benchmarkTeamSize is the industry-typical delivery team size the
// complexity and benchmark models start from.
const benchmarkTeamSize = 5.0

// ProjectRequirements describe the work a team size is recommended for.
type ProjectRequirements struct {
	EstimatedHours   float64  `json:"estimated_hours"`
	DurationWeeks    float64  `json:"duration_weeks"`
	RequiredSkills   []string `json:"required_skills,omitempty"`
	CriticalPath     bool     `json:"critical_path"`
	DeadlinePressure float64  `json:"deadline_pressure"` // [0,1]
}

// TeamSizeRecommendation is the blended output of the three sizing models.
type TeamSizeRecommendation struct {
	RecommendedSize int                `json:"recommended_size"`
	ModelSizes      map[string]float64 `json:"model_sizes"`
	Rationale       []string           `json:"rationale,omitempty"`
}

// CalculateOptimalTeamSize blends a workload model, a complexity model and an
// industry benchmark with 0.4/0.3/0.3 weights, then clamps to [2,12].
func CalculateOptimalTeamSize(req ProjectRequirements) TeamSizeRecommendation {
	weeks := req.DurationWeeks
	if weeks <= 0 {
		weeks = 1
	}

	// 1. Workload: raw hours over sustainable member throughput
	workload := req.EstimatedHours / (sustainableWeeklyHours * weeks)

	// 2. Complexity: benchmark adjusted for skill breadth, critical path
	// and deadline pressure
	complexity := benchmarkTeamSize
	complexity += 0.5 * float64(len(req.RequiredSkills))
	if req.CriticalPath {
		complexity += 1.0
	}
	complexity += 2.0 * stats.Clamp01(req.DeadlinePressure)

	// 3. Benchmark: typical size nudged by project duration. Short projects
	// need more parallelism, long ones amortize onboarding.
	benchmark := benchmarkTeamSize
	switch {
	case weeks < 4:
		benchmark += 1.0
	case weeks > 26:
		benchmark -= 1.0
	}

	blended := 0.4*workload + 0.3*complexity + 0.3*benchmark
	size := int(math.Round(blended))
	if size < minTeamSize {
		size = minTeamSize
	}
	if size > maxTeamSize {
		size = maxTeamSize
	}

	rec := TeamSizeRecommendation{
		RecommendedSize: size,
		ModelSizes: map[string]float64{
			"workload":   stats.Round2(workload),
			"complexity": stats.Round2(complexity),
			"benchmark":  stats.Round2(benchmark),
		},
	}

	if workload > float64(maxTeamSize) {
		rec.Rationale = append(rec.Rationale, "Workload exceeds the maximum team size; consider splitting the project")
	}
	if req.CriticalPath {
		rec.Rationale = append(rec.Rationale, "Critical-path work adds headcount for redundancy")
	}
	if req.DeadlinePressure > 0.7 {
		rec.Rationale = append(rec.Rationale, "High deadline pressure inflates the recommendation; expect diminishing returns")
	}
	return rec
}
