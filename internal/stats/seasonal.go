package stats

// SeasonalDecomposition splits a series into trend, seasonal and residual
// components using a centered moving average and period-indexed averaging.
type SeasonalDecomposition struct {
	Trend    []float64 `json:"trend"`
	Seasonal []float64 `json:"seasonal"`
	Residual []float64 `json:"residual"`
	Period   int       `json:"period"`
}

// Decompose performs an additive decomposition with the given period.
// Requires at least two full periods, otherwise returns nil.
func Decompose(values []float64, period int) *SeasonalDecomposition {
	n := len(values)
	if period < 2 || n < 2*period {
		return nil
	}

	// 1. Trend: centered moving average over one period. Edges carry the
	// nearest computed value so the series keeps its length.
	trend := make([]float64, n)
	half := period / 2
	for i := half; i < n-half; i++ {
		sum := 0.0
		for j := i - half; j <= i+half; j++ {
			sum += values[j]
		}
		trend[i] = sum / float64(2*half+1)
	}
	for i := 0; i < half; i++ {
		trend[i] = trend[half]
	}
	for i := n - half; i < n; i++ {
		trend[i] = trend[n-half-1]
	}

	// 2. Seasonal: average the detrended series per period index
	seasonalIdx := make([]float64, period)
	counts := make([]int, period)
	for i := 0; i < n; i++ {
		seasonalIdx[i%period] += values[i] - trend[i]
		counts[i%period]++
	}
	for i := range seasonalIdx {
		if counts[i] > 0 {
			seasonalIdx[i] /= float64(counts[i])
		}
	}

	seasonal := make([]float64, n)
	residual := make([]float64, n)
	for i := 0; i < n; i++ {
		seasonal[i] = seasonalIdx[i%period]
		residual[i] = values[i] - trend[i] - seasonal[i]
	}

	return &SeasonalDecomposition{
		Trend:    trend,
		Seasonal: seasonal,
		Residual: residual,
		Period:   period,
	}
}

// LastCycle returns the final full seasonal cycle, used to project seasonality
// forward.
func (d *SeasonalDecomposition) LastCycle() []float64 {
	if d == nil || len(d.Seasonal) < d.Period {
		return nil
	}
	return d.Seasonal[len(d.Seasonal)-d.Period:]
}
