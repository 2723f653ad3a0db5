package analysis

import (
	"github.com/kiranshivaraju/studentpulse/internal/normalize"
	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

const patternTime = "time_pattern"

// AnalyzeStudyHabits computes study totals, per-subject habits and time series.
// Durations are minutes; hour fields are minutes/60.
func AnalyzeStudyHabits(records []models.StudyRecord) models.StudyHabitsAnalysis {
	if len(records) == 0 {
		return models.StudyHabitsAnalysis{}
	}

	days := newSeries()
	var byHour [24][]float64
	durations := make([]float64, len(records))
	for i, r := range records {
		durations[i] = r.DurationMinutes
		days.add(dayKey(r.Date), r.DurationMinutes)
		h := r.Date.Hour()
		byHour[h] = append(byHour[h], r.DurationMinutes)
	}

	daily := days.reduce(sum)
	dailySums := make([]float64, len(days.keys))
	for i, d := range days.keys {
		dailySums[i] = daily[d]
	}

	groups := normalize.Group(records, func(r models.StudyRecord) string { return r.Subject })
	total := sum(durations)
	out := models.StudyHabitsAnalysis{
		Stats: &models.StudyStats{
			TotalStudyMinutes:   total,
			TotalStudyHours:     total / 60,
			AverageDailyMinutes: mean(dailySums),
			TotalSessions:       len(records),
			UniqueSubjects:      len(groups),
		},
		Patterns: make(map[string]models.SubjectStudy, len(groups)),
	}

	for _, g := range groups {
		ds := make([]float64, len(g.Records))
		for i, r := range g.Records {
			ds[i] = r.DurationMinutes
		}
		minutes := sum(ds)
		out.Patterns[g.Key] = models.SubjectStudy{
			TotalMinutes:           minutes,
			TotalHours:             minutes / 60,
			AverageSessionDuration: mean(ds),
			Frequency:              len(ds),
		}
	}

	patterns := []models.HourPattern{}
	for hour, vs := range byHour {
		if len(vs) == 0 {
			continue
		}
		if m := mean(vs); m > 0 {
			patterns = append(patterns, models.HourPattern{Type: patternTime, Hour: hour, AverageDuration: m})
		}
	}

	out.Trends = &models.StudyTrends{
		DailyMinutes: daily,
		WeeklyTrends: weekly(days, daily),
		Patterns:     patterns,
	}
	return out
}
