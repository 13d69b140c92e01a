package stats

import (
	"math"
	"testing"
)

func TestDecompose(t *testing.T) {
	// Repeating cycle [10, 20, 30, 40] with no trend
	values := []float64{10, 20, 30, 40, 10, 20, 30, 40, 10, 20, 30, 40}
	d := Decompose(values, 4)
	if d == nil {
		t.Fatal("Expected a decomposition")
	}

	if len(d.Trend) != len(values) || len(d.Seasonal) != len(values) || len(d.Residual) != len(values) {
		t.Fatalf("Component lengths do not match input length")
	}

	// The seasonal component must repeat with the period
	for i := 4; i < len(values); i++ {
		if math.Abs(d.Seasonal[i]-d.Seasonal[i-4]) > 0.001 {
			t.Errorf("Seasonal component not periodic at index %d", i)
		}
	}

	// Components must sum back to the original in the interior
	half := 2
	for i := half; i < len(values)-half; i++ {
		sum := d.Trend[i] + d.Seasonal[i] + d.Residual[i]
		if math.Abs(sum-values[i]) > 0.001 {
			t.Errorf("Index %d: components sum to %v, expected %v", i, sum, values[i])
		}
	}

	cycle := d.LastCycle()
	if len(cycle) != 4 {
		t.Errorf("Expected last cycle of length 4, got %d", len(cycle))
	}
}

func TestDecomposeInsufficientData(t *testing.T) {
	if Decompose([]float64{1, 2, 3}, 4) != nil {
		t.Error("Expected nil for less than two full periods")
	}
	if Decompose([]float64{1, 2, 3, 4}, 1) != nil {
		t.Error("Expected nil for period < 2")
	}
	var d *SeasonalDecomposition
	if d.LastCycle() != nil {
		t.Error("Expected nil last cycle on nil decomposition")
	}
}
