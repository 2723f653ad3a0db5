// Package analysis computes statistics, trends, predictions and improvement
// areas from normalized student records.
package analysis

import "github.com/kiranshivaraju/studentpulse/pkg/models"

// Engine runs the full analysis pipeline. It holds no per-call state and is
// safe for concurrent use.
type Engine struct {
	predictor Predictor
}

// Option configures an Engine.
type Option func(*Engine)

// WithPredictor replaces the BaselinePredictor.
func WithPredictor(p Predictor) Option {
	return func(e *Engine) {
		if p != nil {
			e.predictor = p
		}
	}
}

// NewEngine returns an engine using BaselinePredictor unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{predictor: BaselinePredictor{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// AnalyzePerformance analyzes data with the default engine.
func AnalyzePerformance(data models.NormalizedRecords) models.AnalysisResult {
	return defaultEngine.Analyze(data)
}

// Analyze never fails: missing categories yield empty sub-results.
func (e *Engine) Analyze(data models.NormalizedRecords) models.AnalysisResult {
	grades := AnalyzeGrades(data.Grades)
	attendance := AnalyzeAttendance(data.Attendance)
	study := AnalyzeStudyHabits(data.StudyHabits)

	predictions := e.predictor.Predict(BuildFeatures(data))
	areas := IdentifyImprovementAreas(grades, attendance, study)

	return models.AnalysisResult{
		GradeAnalysis:       grades,
		AttendanceAnalysis:  attendance,
		StudyHabitsAnalysis: study,
		Predictions:         predictions,
		ImprovementAreas:    areas,
		Summary:             ComposeSummary(grades, attendance, study, predictions, areas),
	}
}
