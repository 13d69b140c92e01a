package alerts

import (
	"context"
	"sync"
	"time"

	"workpulse/internal/cache"
	"workpulse/internal/capacity"
	"workpulse/internal/collector"
	"workpulse/internal/forecast"
	"workpulse/internal/performance"
	"workpulse/internal/schedule"
	"workpulse/internal/stats"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Engine evaluates monitoring rules and owns the alert registry.
type Engine struct {
	roster    schedule.RosterReader
	calc      *capacity.Calculator
	perf      *performance.Aggregator
	forecasts *forecast.Engine
	collector *collector.Collector
	configs   map[string]AlertConfiguration

	mu       sync.RWMutex
	registry map[string]*Alert

	insights *cache.Cache[InsightSummary]
	now      func() time.Time
}

// NewEngine wires the alert engine to its upstream analytics. A nil configs
// map selects the defaults.
func NewEngine(roster schedule.RosterReader, calc *capacity.Calculator, perf *performance.Aggregator, fc *forecast.Engine, col *collector.Collector, configs map[string]AlertConfiguration) *Engine {
	if configs == nil {
		configs = DefaultConfigurations()
	}
	return &Engine{
		roster:    roster,
		calc:      calc,
		perf:      perf,
		forecasts: fc,
		collector: col,
		configs:   configs,
		registry:  make(map[string]*Alert),
		insights:  cache.New[InsightSummary](cache.TTLVolatile),
		now:       time.Now,
	}
}

// RunMonitoringCycle checks every team against every enabled alert
// configuration. Teams are checked concurrently; a failing checker is logged
// and skipped so one team cannot abort the cycle.
func (e *Engine) RunMonitoringCycle(ctx context.Context) error {
	e.purgeExpired()

	teams, err := e.roster.GetTeams(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, team := range teams {
		t := team
		g.Go(func() error {
			for _, candidate := range e.checkTeam(gctx, t) {
				e.raise(candidate)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info().Int("teams", len(teams)).Int("active_alerts", len(e.GetActiveAlerts(Filters{}))).
		Msg("Monitoring cycle completed")
	return nil
}

func (e *Engine) checkTeam(ctx context.Context, team schedule.Team) []*Alert {
	var found []*Alert
	for _, check := range []struct {
		alertType string
		run       func(context.Context, schedule.Team, AlertConfiguration) []*Alert
	}{
		{TypeCapacityWarning, e.checkCapacity},
		{TypeBurnoutRisk, e.checkBurnout},
		{TypePerformanceDecline, e.checkPerformance},
		{TypeAnomaly, e.checkAnomalies},
		{TypeUtilizationImbalance, e.checkImbalance},
	} {
		cfg, ok := e.configs[check.alertType]
		if !ok || !cfg.Enabled {
			continue
		}
		found = append(found, check.run(ctx, team, cfg)...)
	}
	return found
}

func (e *Engine) checkCapacity(ctx context.Context, team schedule.Team, cfg AlertConfiguration) []*Alert {
	sprintCap, err := e.calc.SprintToDateCapacity(ctx, team.ID)
	if err != nil {
		log.Warn().Err(err).Str("team", team.ID).Msg("Capacity check failed")
		return nil
	}
	if sprintCap.UtilizationPercent <= cfg.Threshold {
		return nil
	}

	severity := SeverityHigh
	if sprintCap.UtilizationPercent > 110 {
		severity = SeverityCritical
	}
	a := newAlert(TypeCapacityWarning, severity, "capacity", team.ID, e.now())
	a.Metrics["utilization_percent"] = sprintCap.UtilizationPercent
	a.Metrics["actual_hours"] = sprintCap.ActualHours
	a.Metrics["potential_hours"] = sprintCap.PotentialHours
	a.Confidence = 0.95
	a.Recommendations = append(a.Recommendations, "Redistribute sprint work or extend the timeline")
	a.Tags = append(a.Tags, "sprint")
	return []*Alert{a}
}

func (e *Engine) checkBurnout(ctx context.Context, team schedule.Team, cfg AlertConfiguration) []*Alert {
	members, err := e.roster.GetTeamMembers(ctx, team.ID)
	if err != nil {
		log.Warn().Err(err).Str("team", team.ID).Msg("Burnout check failed to load members")
		return nil
	}

	var found []*Alert
	for _, m := range members {
		assessment, err := e.forecasts.AssessBurnoutRisk(ctx, m.ID, collector.DefaultLookbackMonths)
		if err != nil {
			log.Warn().Err(err).Str("member", m.ID).Msg("Burnout assessment failed")
			continue
		}
		if assessment.Probability <= cfg.Threshold {
			continue
		}

		severity := SeverityHigh
		if assessment.RiskLevel == forecast.RiskCritical {
			severity = SeverityCritical
		}
		a := newAlert(TypeBurnoutRisk, severity, "wellbeing", m.ID, e.now())
		a.Metrics["probability"] = assessment.Probability
		a.Metrics["risk_score"] = assessment.RiskScore
		a.Confidence = assessment.Confidence
		a.Recommendations = assessment.Recommendations
		a.Tags = append(a.Tags, "team:"+team.ID)
		found = append(found, a)
	}
	return found
}

func (e *Engine) checkPerformance(ctx context.Context, team schedule.Team, cfg AlertConfiguration) []*Alert {
	perf, err := e.perf.CalculateTeamPerformance(ctx, team.ID)
	if err != nil {
		log.Warn().Err(err).Str("team", team.ID).Msg("Performance check failed")
		return nil
	}
	if perf.Composite >= cfg.Threshold {
		return nil
	}

	severity := SeverityMedium
	if perf.Composite < 60 {
		severity = SeverityHigh
	}
	a := newAlert(TypePerformanceDecline, severity, "performance", team.ID, e.now())
	a.Metrics["composite"] = perf.Composite
	a.Metrics["velocity"] = perf.Velocity
	a.Metrics["efficiency"] = perf.Efficiency
	a.Confidence = 0.8
	a.Recommendations = append(a.Recommendations, "Review sprint commitments against delivered hours")
	return []*Alert{a}
}

func (e *Engine) checkAnomalies(ctx context.Context, team schedule.Team, cfg AlertConfiguration) []*Alert {
	data, err := e.collector.ProcessTeamData(ctx, team.ID)
	if err != nil {
		log.Warn().Err(err).Str("team", team.ID).Msg("Anomaly check failed")
		return nil
	}

	series := collector.UtilizationBySprint(data.HistoricalData)
	anomalies := stats.DetectZScoreAnomalies(series, cfg.Threshold)
	count := 0
	maxScore := 0.0
	for _, an := range anomalies {
		if an.Severity != stats.SeverityHigh {
			continue
		}
		count++
		if an.Score > maxScore {
			maxScore = an.Score
		}
	}
	if count == 0 {
		return nil
	}

	a := newAlert(TypeAnomaly, SeverityMedium, "data", team.ID, e.now())
	a.Metrics["anomaly_count"] = float64(count)
	a.Metrics["max_z_score"] = maxScore
	a.Confidence = 0.7
	a.Recommendations = append(a.Recommendations, "Inspect the flagged sprints for data entry or staffing irregularities")
	return []*Alert{a}
}

func (e *Engine) checkImbalance(ctx context.Context, team schedule.Team, cfg AlertConfiguration) []*Alert {
	data, err := e.collector.ProcessTeamData(ctx, team.ID)
	if err != nil {
		log.Warn().Err(err).Str("team", team.ID).Msg("Imbalance check failed")
		return nil
	}

	perMember := make(map[string][]float64)
	for _, p := range data.HistoricalData {
		perMember[p.MemberID] = append(perMember[p.MemberID], p.Utilization)
	}
	if len(perMember) < 2 {
		return nil
	}

	min, max := -1.0, -1.0
	for _, series := range perMember {
		avg := stats.Mean(series)
		if min < 0 || avg < min {
			min = avg
		}
		if avg > max {
			max = avg
		}
	}
	if max-min <= cfg.Threshold {
		return nil
	}

	a := newAlert(TypeUtilizationImbalance, SeverityMedium, "capacity", team.ID, e.now())
	a.Metrics["utilization_spread"] = stats.Round2(max - min)
	a.Metrics["max_member_utilization"] = stats.Round2(max)
	a.Metrics["min_member_utilization"] = stats.Round2(min)
	a.Confidence = 0.85
	a.Recommendations = append(a.Recommendations, "Rebalance assignments between the most and least loaded members")
	return []*Alert{a}
}

// raise inserts a candidate unless an equivalent active alert already exists
// for the same entity and type.
func (e *Engine) raise(candidate *Alert) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	for _, existing := range e.registry {
		if existing.AffectedEntity == candidate.AffectedEntity &&
			existing.Type == candidate.Type &&
			isOpen(existing) && existing.ExpirationDate.After(now) {
			return
		}
	}
	e.registry[candidate.ID] = candidate
	log.Info().Str("type", candidate.Type).Str("severity", candidate.Severity).
		Str("entity", candidate.AffectedEntity).Msg("Alert raised")
}

// isOpen reports whether an alert still occupies its entity+type slot.
func isOpen(a *Alert) bool {
	return a.Status != StatusResolved && a.Status != StatusDismissed
}

// GetActiveAlerts returns open, unexpired alerts matching the filters,
// sorted by severity then recency, both descending.
func (e *Engine) GetActiveAlerts(f Filters) []Alert {
	e.mu.RLock()
	defer e.mu.RUnlock()

	now := e.now()
	var out []Alert
	for _, a := range e.registry {
		if !isOpen(a) || !a.ExpirationDate.After(now) {
			continue
		}
		if f.match(a) {
			out = append(out, *a)
		}
	}
	sortAlerts(out)
	return out
}

// AcknowledgeAlert moves an active alert to acknowledged. Returns false for
// unknown ids and for any other state, leaving the registry unchanged.
func (e *Engine) AcknowledgeAlert(id, actor string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.registry[id]
	if !ok || a.Status != StatusActive || !a.ExpirationDate.After(e.now()) {
		return false
	}
	a.Status = StatusAcknowledged
	a.AcknowledgedBy = actor
	return true
}

// StartProgress moves an acknowledged alert to in_progress.
func (e *Engine) StartProgress(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.registry[id]
	if !ok || a.Status != StatusAcknowledged {
		return false
	}
	a.Status = StatusInProgress
	return true
}

// ResolveAlert closes an acknowledged or in-progress alert.
func (e *Engine) ResolveAlert(id, actor, note string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.registry[id]
	if !ok || (a.Status != StatusAcknowledged && a.Status != StatusInProgress) {
		return false
	}
	a.Status = StatusResolved
	a.ResolvedBy = actor
	a.ResolutionNote = note
	return true
}

// DismissAlert discards an active alert without action.
func (e *Engine) DismissAlert(id, actor string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.registry[id]
	if !ok || a.Status != StatusActive {
		return false
	}
	a.Status = StatusDismissed
	a.ResolvedBy = actor
	return true
}

// purgeExpired drops alerts past their expiration regardless of status.
func (e *Engine) purgeExpired() {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	for id, a := range e.registry {
		if !a.ExpirationDate.After(now) {
			delete(e.registry, id)
		}
	}
}
