package stats

import (
	"fmt"
	"math"
)

// Trend labels for a fitted slope.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// slopeThreshold separates a real trend from noise around zero.
const slopeThreshold = 0.1

// LinearRegression is an ordinary-least-squares fit over index-as-x.
type LinearRegression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
	N         int     `json:"n"`
}

// FitLinear fits y = slope*x + intercept over x = 0..len(values)-1.
// Requires at least 2 points.
func FitLinear(values []float64) (*LinearRegression, error) {
	n := len(values)
	if n < 2 {
		return nil, fmt.Errorf("linear regression needs >= 2 points, got %d: %w", n, ErrInsufficientData)
	}

	// 1. Accumulate sums
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	fn := float64(n)
	den := fn*sumX2 - sumX*sumX
	slope := 0.0
	if den != 0 {
		slope = (fn*sumXY - sumX*sumY) / den
	}
	intercept := (sumY - slope*sumX) / fn

	// 2. Coefficient of determination
	meanY := sumY / fn
	var ssTot, ssRes float64
	for i, y := range values {
		fitted := slope*float64(i) + intercept
		ssRes += (y - fitted) * (y - fitted)
		ssTot += (y - meanY) * (y - meanY)
	}
	r2 := 1.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}
	if r2 < 0 {
		r2 = 0
	}

	return &LinearRegression{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  r2,
		N:         n,
	}, nil
}

// Predict extrapolates the fitted line for the given number of future steps.
// The margin is a 95% band that widens with the unexplained variance.
func (r *LinearRegression) Predict(steps int) ([]float64, []float64) {
	if steps <= 0 {
		return nil, nil
	}

	predictions := make([]float64, steps)
	margins := make([]float64, steps)
	margin := 1.96 * math.Sqrt(1-r.RSquared) * math.Abs(r.Slope) * math.Sqrt(1+1/float64(steps))

	for i := 0; i < steps; i++ {
		x := float64(r.N + i)
		predictions[i] = r.Slope*x + r.Intercept
		margins[i] = margin
	}
	return predictions, margins
}

// Trend labels the fitted slope.
func (r *LinearRegression) Trend() string {
	return TrendForSlope(r.Slope)
}

// TrendForSlope maps a slope to its trend label.
func TrendForSlope(slope float64) string {
	switch {
	case slope > slopeThreshold:
		return TrendIncreasing
	case slope < -slopeThreshold:
		return TrendDecreasing
	default:
		return TrendStable
	}
}
