package stats

// RiskFactor is a single normalized contributor to a composite risk score.
type RiskFactor struct {
	Name           string  `json:"name"`
	Value          float64 `json:"value"`  // normalized to [0,1]
	Weight         float64 `json:"weight"` // weights across factors sum to 1
	Threshold      float64 `json:"threshold"`
	Recommendation string  `json:"recommendation,omitempty"`
}

// RiskScore is the weighted combination of risk factors.
type RiskScore struct {
	Score           float64            `json:"score"` // [0,1]
	Factors         map[string]float64 `json:"factors"`
	Confidence      float64            `json:"confidence"`
	Recommendations []string           `json:"recommendations,omitempty"`
}

// ComputeRiskScore combines normalized factors into a single [0,1] score.
// Weights are renormalized if they do not sum to 1 so that a missing factor
// does not silently shrink the score. A factor past its own threshold
// contributes its recommendation to the output.
func ComputeRiskScore(factors []RiskFactor, confidence float64) RiskScore {
	result := RiskScore{
		Factors:    make(map[string]float64, len(factors)),
		Confidence: Clamp01(confidence),
	}
	if len(factors) == 0 {
		return result
	}

	totalWeight := 0.0
	for _, f := range factors {
		totalWeight += f.Weight
	}
	if totalWeight <= 0 {
		totalWeight = 1
	}

	score := 0.0
	for _, f := range factors {
		value := Clamp01(f.Value)
		weight := f.Weight / totalWeight
		contribution := value * weight
		score += contribution
		result.Factors[f.Name] = Round2(contribution)

		if f.Recommendation != "" && value > f.Threshold {
			result.Recommendations = append(result.Recommendations, f.Recommendation)
		}
	}

	result.Score = Round2(Clamp01(score))
	return result
}
