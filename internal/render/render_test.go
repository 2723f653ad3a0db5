package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

func init() {
	color.NoColor = true
}

func sampleResult() models.AnalysisResult {
	return models.AnalysisResult{
		GradeAnalysis: models.GradeAnalysis{
			Stats: &models.GradeStats{AverageScore: 72.5},
			Trends: map[string]models.TrendInfo{
				"MATH201": {Trend: models.TrendDeclining, Average: 64, Variance: 36},
				"CS101":   {Trend: models.TrendImproving, Average: 81, Variance: 12.25},
			},
		},
		AttendanceAnalysis: models.AttendanceAnalysis{
			Patterns: map[string]models.CourseAttendance{
				"CS101": {AttendanceRate: 0.7, TotalSessions: 10, MissedSessions: 3},
			},
		},
		Predictions: models.Predictions{
			FinalGrades: map[string]float64{"CS101": 81, "MATH201": 64},
			StudyHabits: map[string]float64{"PHYS": 4.5},
		},
		ImprovementAreas: []models.ImprovementArea{
			{Type: models.AreaAcademic, Subject: "MATH201", Severity: models.SeverityHigh, Description: "Performance in MATH201 needs improvement"},
		},
		Summary: models.Summary{
			OverallPerformance: models.OverallPerformance{GradeAverage: 72.5, AttendanceRate: 0.7, StudyHours: 4.5},
			ImprovementAreas:   1,
		},
	}
}

func TestTables_Sections(t *testing.T) {
	var buf bytes.Buffer
	skipped := []models.SkippedRecord{{Category: "grades", Index: 3, Field: "score", Reason: "expected number, got string"}}
	require.NoError(t, Tables(&buf, sampleResult(), skipped))

	out := buf.String()
	for _, want := range []string{
		"Overview", "72.5%", "70.0%", "4.5h",
		"Grade trends", "declining", "improving", "12.25",
		"Attendance", "Predictions", "PHYS",
		"Improvement areas", "MATH201", "high",
		"Skipped records", "expected number, got string",
	} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("CS101")), bytes.Index(buf.Bytes(), []byte("MATH201")))
	assert.NotContains(t, out, "Study habits")
}

func TestTables_EmptyResultOnlyOverview(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Tables(&buf, models.AnalysisResult{}, nil))

	out := buf.String()
	assert.Contains(t, out, "Overview")
	assert.NotContains(t, out, "Grade trends")
	assert.NotContains(t, out, "Skipped records")
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleResult(), nil))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Contains(t, got, "analysis")
	assert.Equal(t, []any{}, got["skipped_records"])
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, "xml", models.AnalysisResult{}, nil)
	assert.ErrorContains(t, err, "unknown format")
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "stable", TrendLabel(models.TrendStable))
	assert.Equal(t, "improving", TrendLabel(models.TrendImproving))
	assert.Equal(t, "medium", SeverityLabel(models.SeverityMedium))
}
