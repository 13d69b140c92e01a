package stats

import (
	"math"
	"testing"
)

func TestComputeRiskScore(t *testing.T) {
	factors := []RiskFactor{
		{Name: "utilization", Value: 1.0, Weight: 0.5, Threshold: 0.8, Recommendation: "Reduce planned load"},
		{Name: "variability", Value: 0.0, Weight: 0.5, Threshold: 0.8, Recommendation: "Stabilize assignments"},
	}

	result := ComputeRiskScore(factors, 0.9)
	if math.Abs(result.Score-0.5) > 0.001 {
		t.Errorf("Expected score 0.5, got %v", result.Score)
	}
	if len(result.Recommendations) != 1 || result.Recommendations[0] != "Reduce planned load" {
		t.Errorf("Expected a single recommendation for the exceeded factor, got %v", result.Recommendations)
	}
	if math.Abs(result.Factors["utilization"]-0.5) > 0.001 {
		t.Errorf("Expected utilization contribution 0.5, got %v", result.Factors["utilization"])
	}
}

func TestComputeRiskScoreRenormalizesWeights(t *testing.T) {
	// Weights sum to 0.5: renormalization keeps the score scale intact
	factors := []RiskFactor{
		{Name: "a", Value: 1.0, Weight: 0.25},
		{Name: "b", Value: 1.0, Weight: 0.25},
	}
	result := ComputeRiskScore(factors, 1)
	if math.Abs(result.Score-1.0) > 0.001 {
		t.Errorf("Expected renormalized score 1.0, got %v", result.Score)
	}
}

func TestComputeRiskScoreClamps(t *testing.T) {
	factors := []RiskFactor{
		{Name: "a", Value: 5.0, Weight: 1.0}, // out-of-range input
	}
	result := ComputeRiskScore(factors, 2.0)
	if result.Score > 1 {
		t.Errorf("Expected score clamped to 1, got %v", result.Score)
	}
	if result.Confidence > 1 {
		t.Errorf("Expected confidence clamped to 1, got %v", result.Confidence)
	}

	empty := ComputeRiskScore(nil, 0.5)
	if empty.Score != 0 {
		t.Errorf("Expected zero score for no factors, got %v", empty.Score)
	}
}
