package analysis

import (
	"fmt"
	"maps"
	"slices"

	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

// Improvement thresholds.
const (
	LowGradeAverage = 70.0
	LowStudyHours   = 10.0
)

// IdentifyImprovementAreas applies the academic, attendance and study-habit
// rules in that order. Each rule visits its groups in ascending key order and
// the rules are not de-duplicated against each other. The result is never nil.
func IdentifyImprovementAreas(
	grades models.GradeAnalysis,
	attendance models.AttendanceAnalysis,
	study models.StudyHabitsAnalysis,
) []models.ImprovementArea {
	areas := []models.ImprovementArea{}

	for _, course := range slices.Sorted(maps.Keys(grades.Trends)) {
		info := grades.Trends[course]
		var severity string
		switch {
		case info.Trend == models.TrendDeclining:
			severity = models.SeverityHigh
		case info.Average < LowGradeAverage:
			severity = models.SeverityMedium
		default:
			continue
		}
		areas = append(areas, models.ImprovementArea{
			Type:        models.AreaAcademic,
			Subject:     course,
			Severity:    severity,
			Description: fmt.Sprintf("Performance in %s needs improvement", course),
		})
	}

	for _, course := range slices.Sorted(maps.Keys(attendance.Patterns)) {
		if attendance.Patterns[course].AttendanceRate >= LowAttendanceThreshold {
			continue
		}
		areas = append(areas, models.ImprovementArea{
			Type:        models.AreaAttendance,
			Subject:     course,
			Severity:    models.SeverityMedium,
			Description: fmt.Sprintf("Attendance in %s needs improvement", course),
		})
	}

	for _, subject := range slices.Sorted(maps.Keys(study.Patterns)) {
		if study.Patterns[subject].TotalHours >= LowStudyHours {
			continue
		}
		areas = append(areas, models.ImprovementArea{
			Type:        models.AreaStudyHabits,
			Subject:     subject,
			Severity:    models.SeverityLow,
			Description: fmt.Sprintf("Study time for %s needs improvement", subject),
		})
	}

	return areas
}
