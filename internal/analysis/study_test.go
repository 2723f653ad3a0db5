package analysis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

func session(subject string, minutes float64, at time.Time) models.StudyRecord {
	return models.StudyRecord{Subject: subject, DurationMinutes: minutes, Date: at}
}

func studyFixture() []models.StudyRecord {
	return []models.StudyRecord{
		session("Math", 30, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)),
		session("Math", 90, time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC)),
		session("Physics", 0, time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)),
		session("Physics", 60, time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)),
	}
}

func TestAnalyzeStudyHabits_Empty(t *testing.T) {
	got := AnalyzeStudyHabits(nil)
	assert.True(t, got.Empty())

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(b))
}

func TestAnalyzeStudyHabits_Stats(t *testing.T) {
	got := AnalyzeStudyHabits(studyFixture())

	require.NotNil(t, got.Stats)
	assert.Equal(t, models.StudyStats{
		TotalStudyMinutes:   180,
		TotalStudyHours:     3,
		AverageDailyMinutes: 60,
		TotalSessions:       4,
		UniqueSubjects:      2,
	}, *got.Stats)

	assert.Equal(t, models.SubjectStudy{TotalMinutes: 120, TotalHours: 2, AverageSessionDuration: 60, Frequency: 2}, got.Patterns["Math"])
	assert.Equal(t, models.SubjectStudy{TotalMinutes: 60, TotalHours: 1, AverageSessionDuration: 30, Frequency: 2}, got.Patterns["Physics"])
}

func TestAnalyzeStudyHabits_Trends(t *testing.T) {
	got := AnalyzeStudyHabits(studyFixture())
	require.NotNil(t, got.Trends)

	assert.Equal(t, map[string]float64{"2024-01-01": 120, "2024-01-02": 0, "2024-01-08": 60}, got.Trends.DailyMinutes)
	assert.Equal(t, map[string]float64{"2024-01-07": 60, "2024-01-14": 60}, got.Trends.WeeklyTrends)
	assert.Equal(t, []models.HourPattern{
		{Type: "time_pattern", Hour: 9, AverageDuration: 15},
		{Type: "time_pattern", Hour: 10, AverageDuration: 60},
		{Type: "time_pattern", Hour: 21, AverageDuration: 90},
	}, got.Trends.Patterns)
}

func TestAnalyzeStudyHabits_ZeroDurationHourOmitted(t *testing.T) {
	got := AnalyzeStudyHabits([]models.StudyRecord{
		session("Math", 0, time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)),
		session("Math", 45, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)),
	})

	require.Len(t, got.Trends.Patterns, 1)
	assert.Equal(t, 8, got.Trends.Patterns[0].Hour)
}

func TestAnalyzeStudyHabits_BucketsInRecordOffset(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	got := AnalyzeStudyHabits([]models.StudyRecord{
		session("Math", 40, time.Date(2024, 1, 5, 23, 30, 0, 0, est)),
	})

	assert.Equal(t, map[string]float64{"2024-01-05": 40}, got.Trends.DailyMinutes)
	require.Len(t, got.Trends.Patterns, 1)
	assert.Equal(t, 23, got.Trends.Patterns[0].Hour)
}
