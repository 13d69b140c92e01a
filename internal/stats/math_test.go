package stats

import (
	"math"
	"testing"
)

func TestMedian(t *testing.T) {
	if got := Median([]float64{3, 1, 2}); got != 2 {
		t.Errorf("Expected 2, got %v", got)
	}
	if got := Median([]float64{4, 1, 3, 2}); math.Abs(got-2.5) > 0.001 {
		t.Errorf("Expected 2.5, got %v", got)
	}
	if got := Median(nil); got != 0 {
		t.Errorf("Expected 0 for empty input, got %v", got)
	}

	// Input must not be mutated
	input := []float64{3, 1, 2}
	Median(input)
	if input[0] != 3 || input[1] != 1 || input[2] != 2 {
		t.Errorf("Median mutated its input: %v", input)
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := Percentile(values, 0.5); got != 6 {
		t.Errorf("Expected P50 = 6 (nearest rank), got %v", got)
	}
	if got := Percentile(values, 0.9); got != 10 {
		t.Errorf("Expected P90 = 10, got %v", got)
	}
	if got := Percentile(values, 1.0); got != 10 {
		t.Errorf("Expected P100 capped at max, got %v", got)
	}
	if got := Percentile(nil, 0.5); got != 0 {
		t.Errorf("Expected 0 for empty input, got %v", got)
	}
}

func TestVarianceAndStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := Variance(values); math.Abs(got-4) > 0.001 {
		t.Errorf("Expected variance 4, got %v", got)
	}
	if got := StdDev(values); math.Abs(got-2) > 0.001 {
		t.Errorf("Expected stddev 2, got %v", got)
	}
	if got := Variance(nil); got != 0 {
		t.Errorf("Expected 0 variance for empty input, got %v", got)
	}
}

func TestClamp01(t *testing.T) {
	if Clamp01(-0.5) != 0 || Clamp01(1.5) != 1 || Clamp01(0.5) != 0.5 {
		t.Error("Clamp01 out of contract")
	}
}
