// Package alerts implements the alert and insight engine: a rule-evaluation
// loop over capacity, performance and forecast signals that raises,
// deduplicates and expires alerts, plus periodic insight summaries.
package alerts

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Alert types.
const (
	TypeCapacityWarning      = "capacity_warning"
	TypeBurnoutRisk          = "burnout_risk"
	TypePerformanceDecline   = "performance_decline"
	TypeAnomaly              = "anomaly"
	TypeUtilizationImbalance = "utilization_imbalance"
)

// Severities, in escalation order.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Alert statuses.
const (
	StatusActive       = "active"
	StatusAcknowledged = "acknowledged"
	StatusDismissed    = "dismissed"
	StatusInProgress   = "in_progress"
	StatusResolved     = "resolved"
)

// Type-specific lifetimes. An alert past its expiration is purged from the
// registry regardless of status.
const (
	burnoutAlertTTL  = 72 * time.Hour
	anomalyAlertTTL  = 48 * time.Hour
	capacityAlertTTL = 168 * time.Hour
	defaultAlertTTL  = 72 * time.Hour
)

// Alert is one raised monitoring finding. The registry owns all alerts;
// external code mutates them only through the engine's transition methods.
type Alert struct {
	ID              string             `json:"id"`
	Timestamp       time.Time          `json:"timestamp"`
	Type            string             `json:"type"`
	Severity        string             `json:"severity"`
	Category        string             `json:"category"`
	AffectedEntity  string             `json:"affected_entity"`
	Metrics         map[string]float64 `json:"metrics,omitempty"`
	Recommendations []string           `json:"recommendations,omitempty"`
	EscalationPath  []string           `json:"escalation_path"`
	ExpirationDate  time.Time          `json:"expiration_date"`
	Status          string             `json:"status"`
	Confidence      float64            `json:"confidence"`
	Tags            []string           `json:"tags,omitempty"`

	AcknowledgedBy string `json:"acknowledged_by,omitempty"`
	ResolvedBy     string `json:"resolved_by,omitempty"`
	ResolutionNote string `json:"resolution_note,omitempty"`
}

// AlertConfiguration enables and tunes one alert type. Static per engine,
// never mutated during monitoring.
type AlertConfiguration struct {
	Type           string        `json:"type"`
	Enabled        bool          `json:"enabled"`
	Threshold      float64       `json:"threshold"`
	CheckFrequency time.Duration `json:"check_frequency"`
}

// DefaultConfigurations returns the standard monitoring rule set.
func DefaultConfigurations() map[string]AlertConfiguration {
	return map[string]AlertConfiguration{
		TypeCapacityWarning:      {Type: TypeCapacityWarning, Enabled: true, Threshold: 95, CheckFrequency: time.Hour},
		TypeBurnoutRisk:          {Type: TypeBurnoutRisk, Enabled: true, Threshold: 0.7, CheckFrequency: 12 * time.Hour},
		TypePerformanceDecline:   {Type: TypePerformanceDecline, Enabled: true, Threshold: 70, CheckFrequency: 24 * time.Hour},
		TypeAnomaly:              {Type: TypeAnomaly, Enabled: true, Threshold: 2.5, CheckFrequency: 6 * time.Hour},
		TypeUtilizationImbalance: {Type: TypeUtilizationImbalance, Enabled: true, Threshold: 30, CheckFrequency: 24 * time.Hour},
	}
}

// Filters narrow a GetActiveAlerts query. Zero fields match everything.
type Filters struct {
	Entity   string
	Type     string
	Severity string
}

func (f Filters) match(a *Alert) bool {
	if f.Entity != "" && a.AffectedEntity != f.Entity {
		return false
	}
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	if f.Severity != "" && a.Severity != f.Severity {
		return false
	}
	return true
}

func newAlert(alertType, severity, category, entity string, at time.Time) *Alert {
	return &Alert{
		ID:             uuid.New().String(),
		Timestamp:      at,
		Type:           alertType,
		Severity:       severity,
		Category:       category,
		AffectedEntity: entity,
		EscalationPath: escalationPath(severity),
		ExpirationDate: at.Add(alertTTL(alertType)),
		Status:         StatusActive,
		Metrics:        make(map[string]float64),
	}
}

func alertTTL(alertType string) time.Duration {
	switch alertType {
	case TypeBurnoutRisk:
		return burnoutAlertTTL
	case TypeAnomaly:
		return anomalyAlertTTL
	case TypeCapacityWarning, TypeUtilizationImbalance:
		return capacityAlertTTL
	default:
		return defaultAlertTTL
	}
}

// escalationPath is severity-indexed: critical goes everywhere immediately,
// low waits a day before reaching the team lead.
func escalationPath(severity string) []string {
	switch severity {
	case SeverityCritical:
		return []string{"immediate:pager", "immediate:team-lead", "immediate:engineering-director"}
	case SeverityHigh:
		return []string{"immediate:team-lead", "4h:engineering-director"}
	case SeverityMedium:
		return []string{"12h:team-lead"}
	default:
		return []string{"24h:team-lead"}
	}
}

var severityRank = map[string]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

func sortAlerts(list []Alert) {
	sort.Slice(list, func(i, j int) bool {
		ri, rj := severityRank[list[i].Severity], severityRank[list[j].Severity]
		if ri != rj {
			return ri > rj
		}
		return list[i].Timestamp.After(list[j].Timestamp)
	})
}
