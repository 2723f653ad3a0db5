package analysis

import (
	"github.com/kiranshivaraju/studentpulse/internal/normalize"
	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

// LowAttendanceThreshold is the present fraction below which a weekday is
// reported and a course is flagged for improvement.
const LowAttendanceThreshold = 0.8

const patternDay = "day_pattern"

// AnalyzeAttendance computes attendance rates overall, per course and over time.
// Only "present" counts as attended and only "absent" as missed.
func AnalyzeAttendance(records []models.AttendanceRecord) models.AttendanceAnalysis {
	if len(records) == 0 {
		return models.AttendanceAnalysis{}
	}

	out := models.AttendanceAnalysis{
		Stats: &models.AttendanceStats{
			TotalSessions:    len(records),
			AttendedSessions: countStatus(records, models.StatusPresent),
		},
		Patterns: make(map[string]models.CourseAttendance),
		Trends:   attendanceTrends(records),
	}
	out.Stats.AttendanceRate = rate(out.Stats.AttendedSessions, out.Stats.TotalSessions)

	groups := normalize.Group(records, func(r models.AttendanceRecord) string { return r.CourseID })
	out.Trends.ByCourse = make(map[string]*models.AttendanceTrends, len(groups))
	for _, g := range groups {
		out.Patterns[g.Key] = models.CourseAttendance{
			AttendanceRate: rate(countStatus(g.Records, models.StatusPresent), len(g.Records)),
			TotalSessions:  len(g.Records),
			MissedSessions: countStatus(g.Records, models.StatusAbsent),
		}
		out.Trends.ByCourse[g.Key] = attendanceTrends(g.Records)
	}

	return out
}

func attendanceTrends(records []models.AttendanceRecord) *models.AttendanceTrends {
	days := newSeries()
	var byWeekday [7][]float64
	for _, r := range records {
		v := presence(r)
		days.add(dayKey(r.Date), v)
		wd := weekday(r.Date)
		byWeekday[wd] = append(byWeekday[wd], v)
	}

	daily := days.reduce(mean)
	patterns := []models.DayPattern{}
	for day, vs := range byWeekday {
		if len(vs) == 0 {
			continue
		}
		if r := mean(vs); r < LowAttendanceThreshold {
			patterns = append(patterns, models.DayPattern{Type: patternDay, Day: day, AttendanceRate: r})
		}
	}

	return &models.AttendanceTrends{
		DailyRates:   daily,
		WeeklyTrends: weekly(days, daily),
		Patterns:     patterns,
	}
}

func presence(r models.AttendanceRecord) float64 {
	if r.Status == models.StatusPresent {
		return 1
	}
	return 0
}

func countStatus(records []models.AttendanceRecord, status string) int {
	n := 0
	for _, r := range records {
		if r.Status == status {
			n++
		}
	}
	return n
}

func rate(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
