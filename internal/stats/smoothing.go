package stats

import "fmt"

// DefaultEMAAlpha is the smoothing factor applied when none is configured.
const DefaultEMAAlpha = 0.3

// MovingAverage returns the simple moving average series for the given window.
// The result has len(values)-window+1 points; nil when the window does not fit.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 0 || len(values) < window {
		return nil
	}

	result := make([]float64, 0, len(values)-window+1)
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			result = append(result, sum/float64(window))
		}
	}
	return result
}

// ExponentialMovingAverage returns the EMA series. Alpha outside (0,1] falls
// back to the default.
func ExponentialMovingAverage(values []float64, alpha float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultEMAAlpha
	}

	result := make([]float64, len(values))
	result[0] = values[0]
	for i := 1; i < len(values); i++ {
		result[i] = alpha*values[i] + (1-alpha)*result[i-1]
	}
	return result
}

// MovingAverageForecast extends the last window average flat for the requested
// steps. Confidence is derived from the relative variance of the trailing
// window: a noisy tail yields a low-confidence forecast.
func MovingAverageForecast(values []float64, window, steps int) ([]float64, float64, error) {
	if window <= 0 {
		window = 3
	}
	if len(values) < window {
		return nil, 0, fmt.Errorf("moving average needs >= %d points, got %d: %w", window, len(values), ErrInsufficientData)
	}

	tail := values[len(values)-window:]
	avg := Mean(tail)

	confidence := 0.0
	if avg != 0 {
		confidence = Clamp01(1 - Variance(tail)/(avg*avg))
	}

	predictions := make([]float64, steps)
	for i := range predictions {
		predictions[i] = avg
	}
	return predictions, confidence, nil
}
