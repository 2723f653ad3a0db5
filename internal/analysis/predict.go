package analysis

import "github.com/kiranshivaraju/studentpulse/pkg/models"

// Predictor turns a feature table into per-group point estimates. Any learned
// model plugs into the engine through this interface via WithPredictor.
type Predictor interface {
	Predict(FeatureTable) models.Predictions
}

// BaselinePredictor passes current values through unchanged: the final grade
// is the current mean, attendance the current rate and study time the current
// total hours. It does not forecast.
type BaselinePredictor struct{}

// Predict implements Predictor. A row without a source block contributes
// nothing to that block's map; maps with no entries are left nil.
func (BaselinePredictor) Predict(features FeatureTable) models.Predictions {
	var p models.Predictions
	for _, r := range features.Rows {
		if r.Grades != nil {
			p.FinalGrades = put(p.FinalGrades, r.Key, r.Grades.Mean)
		}
		if r.Attendance != nil {
			p.Attendance = put(p.Attendance, r.Key, r.Attendance.Rate)
		}
		if r.Study != nil {
			p.StudyHabits = put(p.StudyHabits, r.Key, r.Study.TotalHours)
		}
	}
	return p
}

func put(m map[string]float64, k string, v float64) map[string]float64 {
	if m == nil {
		m = make(map[string]float64)
	}
	m[k] = v
	return m
}
