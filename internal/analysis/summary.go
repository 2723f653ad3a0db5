package analysis

import (
	"fmt"
	"maps"
	"slices"

	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

// ComposeSummary aggregates analyzer outputs into the summary block. It
// computes nothing new; absent stats read as 0.
func ComposeSummary(
	grades models.GradeAnalysis,
	attendance models.AttendanceAnalysis,
	study models.StudyHabitsAnalysis,
	predictions models.Predictions,
	areas []models.ImprovementArea,
) models.Summary {
	var overall models.OverallPerformance
	if grades.Stats != nil {
		overall.GradeAverage = grades.Stats.AverageScore
	}
	if attendance.Stats != nil {
		overall.AttendanceRate = attendance.Stats.AttendanceRate
	}
	if study.Stats != nil {
		overall.StudyHours = study.Stats.TotalStudyHours
	}

	findings := models.KeyFindings{
		GradeTrends:        []string{},
		AttendancePatterns: []string{},
		StudyPatterns:      []string{},
	}
	for _, course := range slices.Sorted(maps.Keys(grades.Trends)) {
		findings.GradeTrends = append(findings.GradeTrends,
			fmt.Sprintf("%s: %s", course, grades.Trends[course].Trend))
	}
	for _, course := range slices.Sorted(maps.Keys(attendance.Patterns)) {
		findings.AttendancePatterns = append(findings.AttendancePatterns,
			fmt.Sprintf("%s: %.2f%%", course, attendance.Patterns[course].AttendanceRate*100))
	}
	for _, subject := range slices.Sorted(maps.Keys(study.Patterns)) {
		findings.StudyPatterns = append(findings.StudyPatterns,
			fmt.Sprintf("%s: %.1f hours", subject, study.Patterns[subject].TotalHours))
	}

	return models.Summary{
		OverallPerformance: overall,
		KeyFindings:        findings,
		ImprovementAreas:   len(areas),
		Predictions:        predictions,
	}
}
