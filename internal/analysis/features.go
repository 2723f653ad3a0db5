package analysis

import (
	"slices"
	"strings"

	"github.com/kiranshivaraju/studentpulse/internal/normalize"
	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

// GradeFeatures summarizes one course's graded scores.
type GradeFeatures struct {
	Mean  float64
	Std   float64
	Count int
}

// AttendanceFeatures summarizes one course's attendance.
type AttendanceFeatures struct {
	Rate float64
}

// StudyFeatures summarizes one subject's study sessions.
type StudyFeatures struct {
	TotalMinutes float64
	TotalHours   float64
	AvgSession   float64
	Sessions     int
}

// FeatureRow merges every source's summary for one group key. A nil block
// means the source has no data for the key, which is distinct from zero.
type FeatureRow struct {
	Key        string
	Grades     *GradeFeatures
	Attendance *AttendanceFeatures
	Study      *StudyFeatures
}

// FeatureTable holds one row per group key in ascending key order. Course ids
// and subjects share the key space.
type FeatureTable struct {
	Rows []FeatureRow
}

// Row returns the row for key, if any.
func (t FeatureTable) Row(key string) (FeatureRow, bool) {
	i, ok := slices.BinarySearchFunc(t.Rows, key, func(r FeatureRow, k string) int {
		return strings.Compare(r.Key, k)
	})
	if !ok {
		return FeatureRow{}, false
	}
	return t.Rows[i], true
}

// BuildFeatures aggregates normalized records into per-group feature rows.
// Courses with no graded score get no grade block.
func BuildFeatures(data models.NormalizedRecords) FeatureTable {
	rows := make(map[string]*FeatureRow)
	row := func(key string) *FeatureRow {
		r, ok := rows[key]
		if !ok {
			r = &FeatureRow{Key: key}
			rows[key] = r
		}
		return r
	}

	for _, g := range groupedOr(data.GradesByCourse, data.Grades, func(r models.GradeRecord) string { return r.CourseID }) {
		scores := gradedScores(g.Records)
		if len(scores) == 0 {
			continue
		}
		row(g.Key).Grades = &GradeFeatures{
			Mean:  mean(scores),
			Std:   sampleStdDev(scores),
			Count: len(scores),
		}
	}

	for _, g := range groupedOr(data.AttendanceByCourse, data.Attendance, func(r models.AttendanceRecord) string { return r.CourseID }) {
		row(g.Key).Attendance = &AttendanceFeatures{
			Rate: rate(countStatus(g.Records, models.StatusPresent), len(g.Records)),
		}
	}

	for _, g := range groupedOr(data.StudyBySubject, data.StudyHabits, func(r models.StudyRecord) string { return r.Subject }) {
		ds := make([]float64, len(g.Records))
		for i, r := range g.Records {
			ds[i] = r.DurationMinutes
		}
		minutes := sum(ds)
		row(g.Key).Study = &StudyFeatures{
			TotalMinutes: minutes,
			TotalHours:   minutes / 60,
			AvgSession:   mean(ds),
			Sessions:     len(ds),
		}
	}

	table := FeatureTable{Rows: make([]FeatureRow, 0, len(rows))}
	for _, r := range rows {
		table.Rows = append(table.Rows, *r)
	}
	slices.SortFunc(table.Rows, func(a, b FeatureRow) int {
		return strings.Compare(a.Key, b.Key)
	})
	return table
}

// groupedOr returns groups, regrouping flat when the caller built the records
// without going through normalize.Normalize.
func groupedOr[T any](groups []models.GroupSeries[T], flat []T, key func(T) string) []models.GroupSeries[T] {
	if groups == nil && len(flat) > 0 {
		return normalize.Group(flat, key)
	}
	return groups
}
