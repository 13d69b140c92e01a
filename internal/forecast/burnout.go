package forecast

import (
	"context"
	"fmt"
	"math"

	"workpulse/internal/collector"
	"workpulse/internal/stats"
)

// minBurnoutPoints is the smallest member history that supports a real
// assessment. Below it a low-risk default is returned.
const minBurnoutPoints = 5

// Utilization bands used by the burnout factors.
const (
	overtimeUtilization = 110.0 // sustained work beyond this is overtime
	restUtilization     = 20.0  // below this counts as a rest period
)

// Burnout risk levels.
const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// BurnoutAssessment is the outcome of a member burnout analysis.
type BurnoutAssessment struct {
	MemberID        string             `json:"member_id"`
	RiskScore       float64            `json:"risk_score"`  // [0,1]
	Probability     float64            `json:"probability"` // logistic transform of the score
	RiskLevel       string             `json:"risk_level"`
	Confidence      float64            `json:"confidence"`
	Factors         map[string]float64 `json:"factors"`
	Recommendations []string           `json:"recommendations,omitempty"`
}

// AssessBurnoutRisk scores a member's burnout risk from their utilization
// history. With fewer than 5 data points it returns a low-risk default with
// minimal confidence rather than an error.
func (e *Engine) AssessBurnoutRisk(ctx context.Context, memberID string, monthsBack int) (BurnoutAssessment, error) {
	key := fmt.Sprintf("%s|%d", memberID, monthsBack)
	if cached, ok := e.burnout.Get(key); ok {
		return cached, nil
	}

	history, err := e.collector.MemberHistory(ctx, memberID, monthsBack)
	if err != nil {
		return BurnoutAssessment{}, err
	}

	if len(history) < minBurnoutPoints {
		return defaultAssessment(memberID), nil
	}

	utilization := make([]float64, len(history))
	for i, p := range history {
		utilization[i] = p.Utilization
	}

	turnover := 0.0
	if data, err := e.collector.ProcessTeamData(ctx, history[0].TeamID); err == nil {
		turnover = collector.BuildFeatureVector(data).MemberTurnover
	}

	assessment := assessUtilization(memberID, utilization, turnover)
	e.burnout.Set(key, assessment)
	return assessment, nil
}

func defaultAssessment(memberID string) BurnoutAssessment {
	score := 0.2
	return BurnoutAssessment{
		MemberID:    memberID,
		RiskScore:   score,
		Probability: stats.Round2(logistic(score)),
		RiskLevel:   RiskLow,
		Confidence:  0.1,
		Factors:     map[string]float64{},
	}
}

func assessUtilization(memberID string, utilization []float64, turnover float64) BurnoutAssessment {
	mean := stats.Mean(utilization)

	// 1. Workload trend: a rising utilization slope raises risk
	workloadTrend := 0.5
	if fit, err := stats.FitLinear(utilization); err == nil {
		workloadTrend = stats.Clamp01(0.5 + fit.Slope/20.0)
	}

	// 2. Workload consistency: an erratic schedule wears people down even
	// when the average looks fine. Coefficient of variation, clamped.
	inconsistency := 0.0
	if mean > 0 {
		inconsistency = stats.Clamp01(stats.StdDev(utilization) / mean)
	}

	// 3. Overtime frequency
	overtime := 0.0
	rest := 0.0
	for _, u := range utilization {
		if u > overtimeUtilization {
			overtime++
		}
		if u < restUtilization {
			rest++
		}
	}
	n := float64(len(utilization))
	overtimeFrequency := overtime / n

	// 4. Rest deficit: few low-utilization periods means no recovery time
	restDeficit := stats.Clamp01(1.0 - (rest/n)*5.0)

	// 5. Team churn amplifies individual load
	churnImpact := stats.Clamp01(turnover * 2.0)

	factors := []stats.RiskFactor{
		{Name: "workload_trend", Value: workloadTrend, Weight: 0.25, Threshold: 0.6,
			Recommendation: "Rebalance assignments to flatten the rising workload"},
		{Name: "consistency", Value: inconsistency, Weight: 0.25, Threshold: 0.5,
			Recommendation: "Smooth out the sprint-to-sprint workload swings"},
		{Name: "overtime_frequency", Value: overtimeFrequency, Weight: 0.25, Threshold: 0.3,
			Recommendation: "Cap overtime sprints and schedule recovery time"},
		{Name: "rest_deficit", Value: restDeficit, Weight: 0.15, Threshold: 0.8,
			Recommendation: "Encourage time off; no rest periods recorded recently"},
		{Name: "team_churn", Value: churnImpact, Weight: 0.1, Threshold: 0.5,
			Recommendation: "Stabilize team membership to spread the load"},
	}

	confidence := stats.Clamp01(float64(len(utilization)) / 12.0)
	risk := stats.ComputeRiskScore(factors, confidence)

	probability := stats.Round2(logistic(risk.Score))

	return BurnoutAssessment{
		MemberID:        memberID,
		RiskScore:       risk.Score,
		Probability:     probability,
		RiskLevel:       riskLevel(probability),
		Confidence:      risk.Confidence,
		Factors:         risk.Factors,
		Recommendations: risk.Recommendations,
	}
}

// logistic maps a [0,1] composite score to a probability, centered at 0.5.
func logistic(score float64) float64 {
	return 1.0 / (1.0 + math.Exp(-5.0*(score-0.5)))
}

func riskLevel(probability float64) string {
	switch {
	case probability < 0.3:
		return RiskLow
	case probability < 0.6:
		return RiskMedium
	case probability < 0.85:
		return RiskHigh
	default:
		return RiskCritical
	}
}
