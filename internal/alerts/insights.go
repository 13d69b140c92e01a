package alerts

import (
	"context"
	"fmt"
	"math"
	"time"

	"workpulse/internal/collector"
	"workpulse/internal/performance"
	"workpulse/internal/stats"

	"github.com/rs/zerolog/log"
)

// teamBurnoutThreshold marks the average member probability above which a
// team is flagged as likely to burn out within 4-6 weeks.
const teamBurnoutThreshold = 0.6

// Insight is one finding inside a summary.
type Insight struct {
	Category string  `json:"category"`
	Entity   string  `json:"entity,omitempty"`
	Message  string  `json:"message"`
	Score    float64 `json:"score,omitempty"`
}

// InsightSummary is the periodic leadership report.
type InsightSummary struct {
	Start              time.Time       `json:"start"`
	End                time.Time       `json:"end"`
	GeneratedAt        time.Time       `json:"generated_at"`
	KeyInsights        []Insight       `json:"key_insights"`
	TrendInsights      []Insight       `json:"trend_insights"`
	PredictiveInsights []Insight       `json:"predictive_insights"`
	RiskAssessment     stats.RiskScore `json:"risk_assessment"`
	ActiveAlertCount   int             `json:"active_alert_count"`
}

// GenerateInsights builds the leadership summary for a period: top and
// struggling performers, capacity stress, velocity trends, burnout outlook
// and a company-level risk score. Results are cached with a short TTL.
func (e *Engine) GenerateInsights(ctx context.Context, start, end time.Time) (InsightSummary, error) {
	key := start.Format("2006-01-02") + "|" + end.Format("2006-01-02")
	if cached, ok := e.insights.Get(key); ok {
		return cached, nil
	}

	company, err := e.perf.CalculateCompanyPerformance(ctx)
	if err != nil {
		return InsightSummary{}, err
	}

	summary := InsightSummary{
		Start:            start,
		End:              end,
		GeneratedAt:      e.now(),
		ActiveAlertCount: len(e.GetActiveAlerts(Filters{})),
	}

	summary.KeyInsights = e.keyInsights(ctx, company)
	summary.TrendInsights = e.trendInsights(ctx, company)
	summary.PredictiveInsights = e.predictiveInsights(ctx, company)
	summary.RiskAssessment = e.companyRisk(company)

	e.insights.Set(key, summary)
	return summary, nil
}

func (e *Engine) keyInsights(ctx context.Context, company performance.CompanyPerformance) []Insight {
	var out []Insight

	var top *performance.TeamPerformance
	for i := range company.Teams {
		if top == nil || company.Teams[i].Composite > top.Composite {
			top = &company.Teams[i]
		}
	}
	if top != nil {
		out = append(out, Insight{
			Category: "performance",
			Entity:   top.TeamID,
			Message:  fmt.Sprintf("Top performing team with a composite score of %.1f (%s)", top.Composite, top.Category),
			Score:    top.Composite,
		})
	}

	for _, team := range company.Teams {
		if team.AvgUtilization > 95 {
			out = append(out, Insight{
				Category: "capacity",
				Entity:   team.TeamID,
				Message:  fmt.Sprintf("Capacity-stressed: average utilization at %.1f%%", team.AvgUtilization),
				Score:    team.AvgUtilization,
			})
		}
	}
	return out
}

func (e *Engine) trendInsights(ctx context.Context, company performance.CompanyPerformance) []Insight {
	var out []Insight
	for _, team := range company.Teams {
		data, err := e.collector.ProcessTeamData(ctx, team.TeamID)
		if err != nil {
			log.Warn().Err(err).Str("team", team.TeamID).Msg("Trend insight skipped")
			continue
		}
		fit, err := stats.FitLinear(data.VelocityTrend)
		if err != nil {
			continue
		}
		trend := fit.Trend()
		if trend == stats.TrendStable {
			continue
		}
		out = append(out, Insight{
			Category: "trend",
			Entity:   team.TeamID,
			Message:  fmt.Sprintf("Delivered capacity is %s by %.1f hours per sprint", trend, math.Abs(fit.Slope)),
			Score:    stats.Round2(fit.Slope),
		})
	}
	return out
}

func (e *Engine) predictiveInsights(ctx context.Context, company performance.CompanyPerformance) []Insight {
	var out []Insight
	for _, team := range company.Teams {
		members, err := e.roster.GetTeamMembers(ctx, team.TeamID)
		if err != nil || len(members) == 0 {
			continue
		}
		total := 0.0
		assessed := 0
		for _, m := range members {
			assessment, err := e.forecasts.AssessBurnoutRisk(ctx, m.ID, collector.DefaultLookbackMonths)
			if err != nil {
				continue
			}
			total += assessment.Probability
			assessed++
		}
		if assessed == 0 {
			continue
		}
		teamRisk := total / float64(assessed)
		if teamRisk > teamBurnoutThreshold {
			out = append(out, Insight{
				Category: "burnout",
				Entity:   team.TeamID,
				Message:  "Team-level burnout likely within 4-6 weeks without workload changes",
				Score:    stats.Round2(teamRisk),
			})
		}
	}
	return out
}

// companyRisk scores the organisation from the share of stressed, declining
// and unstable teams.
func (e *Engine) companyRisk(company performance.CompanyPerformance) stats.RiskScore {
	total := float64(len(company.Teams))
	if total == 0 {
		return stats.ComputeRiskScore(nil, 0)
	}

	stressed, declining, unstable := 0.0, 0.0, 0.0
	for _, team := range company.Teams {
		if team.AvgUtilization > 95 {
			stressed++
		}
		if team.Composite < 70 {
			declining++
		}
		if team.Stability < 70 {
			unstable++
		}
	}

	factors := []stats.RiskFactor{
		{Name: "capacity_stress", Value: stressed / total, Weight: 0.4, Threshold: 0.25,
			Recommendation: "Review staffing for over-utilized teams"},
		{Name: "performance_decline", Value: declining / total, Weight: 0.35, Threshold: 0.25,
			Recommendation: "Audit struggling teams for blockers and scope creep"},
		{Name: "team_instability", Value: unstable / total, Weight: 0.25, Threshold: 0.25,
			Recommendation: "Slow down reorganizations to let teams stabilize"},
	}
	confidence := stats.Clamp01(total / 5.0)
	return stats.ComputeRiskScore(factors, confidence)
}
