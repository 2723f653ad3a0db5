package analysis

import (
	"gonum.org/v1/gonum/stat"

	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

// TrendSlopeThreshold is the absolute least-squares slope, in units per
// observation, beyond which a series is improving or declining.
const TrendSlopeThreshold = 0.1

// ClassifyTrend fits value against index 0..n-1 by ordinary least squares and
// labels the slope. Fewer than 2 values are always stable.
func ClassifyTrend(values []float64) models.Trend {
	slope := Slope(values)
	switch {
	case slope > TrendSlopeThreshold:
		return models.TrendImproving
	case slope < -TrendSlopeThreshold:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

// Slope returns the OLS slope of values over their index, 0 with fewer than 2 values.
func Slope(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	x := make([]float64, len(values))
	for i := range x {
		x[i] = float64(i)
	}
	_, beta := stat.LinearRegression(x, values, nil, false)
	return beta
}
