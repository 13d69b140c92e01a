package stats

import (
	"math"
	"slices"
)

// Anomaly severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// ZScoreThreshold is the default |z| cutoff for flagging a point.
const ZScoreThreshold = 2.5

// Anomaly is a single flagged point in a series.
type Anomaly struct {
	Index    int     `json:"index"`
	Value    float64 `json:"value"`
	Score    float64 `json:"score"` // |z| for z-score, distance past the fence for IQR
	Severity string  `json:"severity"`
	Method   string  `json:"method"` // "zscore" or "iqr"
}

// DetectZScoreAnomalies flags points whose |z| exceeds the threshold.
// Requires at least 3 points, otherwise returns nil.
func DetectZScoreAnomalies(values []float64, threshold float64) []Anomaly {
	if len(values) < 3 {
		return nil
	}
	if threshold <= 0 {
		threshold = ZScoreThreshold
	}

	mean := Mean(values)
	sd := StdDev(values)
	if sd == 0 {
		return nil
	}

	var anomalies []Anomaly
	for i, v := range values {
		z := math.Abs(v-mean) / sd
		if z > threshold {
			anomalies = append(anomalies, Anomaly{
				Index:    i,
				Value:    v,
				Score:    Round2(z),
				Severity: zScoreSeverity(z),
				Method:   "zscore",
			})
		}
	}
	return anomalies
}

func zScoreSeverity(z float64) string {
	switch {
	case z > 3:
		return SeverityHigh
	case z > 2:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// DetectIQRAnomalies flags points outside [Q1-1.5*IQR, Q3+1.5*IQR].
// Requires at least 4 points, otherwise returns nil.
func DetectIQRAnomalies(values []float64) []Anomaly {
	if len(values) < 4 {
		return nil
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	slices.Sort(sorted)

	q1 := sorted[int(float64(len(sorted))*0.25)]
	q3 := sorted[int(float64(len(sorted))*0.75)]
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	var anomalies []Anomaly
	for i, v := range values {
		if v < lower || v > upper {
			distance := 0.0
			if v < lower {
				distance = lower - v
			} else {
				distance = v - upper
			}

			severity := SeverityMedium
			if iqr > 0 && distance > 1.5*iqr {
				severity = SeverityHigh
			}

			anomalies = append(anomalies, Anomaly{
				Index:    i,
				Value:    v,
				Score:    Round2(distance),
				Severity: severity,
				Method:   "iqr",
			})
		}
	}
	return anomalies
}
