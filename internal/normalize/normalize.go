// Package normalize turns raw student record rows into typed, date-sorted series.
package normalize

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

// Record categories, used in error reports.
const (
	CategoryGrades      = "grades"
	CategoryAttendance  = "attendance"
	CategoryStudyHabits = "study_habits"
)

// Window restricts records to dates in [Start, End]. A zero bound is open.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && t.After(w.End) {
		return false
	}
	return true
}

// Options controls malformed-row handling and date filtering.
type Options struct {
	// Strict aborts on the first malformed row instead of skipping it.
	Strict bool
	Window Window
}

// Normalize parses every category of raw, drops rows outside opts.Window, and
// groups the rest by course or subject.
//
// In the default mode malformed rows are skipped and listed in Skipped; in
// strict mode the first one is returned as a *MalformedRecordError.
func Normalize(raw models.StudentData, opts Options) (models.NormalizedRecords, error) {
	var out models.NormalizedRecords

	keep := func(bad *MalformedRecordError) error {
		if bad == nil {
			return nil
		}
		if opts.Strict {
			return bad
		}
		out.Skipped = append(out.Skipped, bad.Skipped())
		return nil
	}

	for i, rec := range raw.Grades {
		g, bad := parseGrade(i, rec)
		if err := keep(bad); err != nil {
			return models.NormalizedRecords{}, err
		}
		if bad == nil && opts.Window.Contains(g.Date) {
			out.Grades = append(out.Grades, g)
		}
	}

	for i, rec := range raw.Attendance {
		a, bad := parseAttendance(i, rec)
		if err := keep(bad); err != nil {
			return models.NormalizedRecords{}, err
		}
		if bad == nil && opts.Window.Contains(a.Date) {
			out.Attendance = append(out.Attendance, a)
		}
	}

	for i, rec := range raw.StudyHabits {
		s, bad := parseStudy(i, rec)
		if err := keep(bad); err != nil {
			return models.NormalizedRecords{}, err
		}
		if bad == nil && opts.Window.Contains(s.Date) {
			out.StudyHabits = append(out.StudyHabits, s)
		}
	}

	slices.SortStableFunc(out.Grades, func(a, b models.GradeRecord) int { return a.Date.Compare(b.Date) })
	slices.SortStableFunc(out.Attendance, func(a, b models.AttendanceRecord) int { return a.Date.Compare(b.Date) })
	slices.SortStableFunc(out.StudyHabits, func(a, b models.StudyRecord) int { return a.Date.Compare(b.Date) })

	out.GradesByCourse = Group(out.Grades, func(g models.GradeRecord) string { return g.CourseID })
	out.AttendanceByCourse = Group(out.Attendance, func(a models.AttendanceRecord) string { return a.CourseID })
	out.StudyBySubject = Group(out.StudyHabits, func(s models.StudyRecord) string { return s.Subject })

	return out, nil
}

// Group splits records by key, preserving their relative order, and returns the
// groups in ascending key order. It returns nil for empty input.
func Group[T any](records []T, key func(T) string) []models.GroupSeries[T] {
	if len(records) == 0 {
		return nil
	}
	idx := make(map[string]int)
	var groups []models.GroupSeries[T]
	for _, r := range records {
		k := key(r)
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, models.GroupSeries[T]{Key: k})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	slices.SortFunc(groups, func(a, b models.GroupSeries[T]) int { return cmp.Compare(a.Key, b.Key) })
	return groups
}

func parseGrade(i int, rec models.RawRecord) (models.GradeRecord, *MalformedRecordError) {
	r := rowReader{category: CategoryGrades, index: i, rec: rec}
	g := models.GradeRecord{
		CourseID:  r.requiredString("course_id"),
		Date:      r.date("date"),
		GradeType: r.optionalString("grade_type"),
		MaxScore:  r.optionalNumber("max_score"),
	}
	if score, ok := r.number("score"); ok {
		g.Score = &score
	}
	return g, r.err
}

func parseAttendance(i int, rec models.RawRecord) (models.AttendanceRecord, *MalformedRecordError) {
	r := rowReader{category: CategoryAttendance, index: i, rec: rec}
	a := models.AttendanceRecord{
		CourseID: r.requiredString("course_id"),
		Date:     r.date("date"),
	}
	status := strings.ToLower(r.requiredString("status"))
	switch status {
	case models.StatusPresent, models.StatusAbsent, models.StatusLate:
		a.Status = status
	case "":
	default:
		r.fail("status", "must be one of present, absent, late")
	}
	return a, r.err
}

func parseStudy(i int, rec models.RawRecord) (models.StudyRecord, *MalformedRecordError) {
	r := rowReader{category: CategoryStudyHabits, index: i, rec: rec}
	s := models.StudyRecord{
		Subject:      r.requiredString("subject"),
		Date:         r.date("date"),
		ActivityType: r.optionalString("activity_type"),
		Notes:        r.optionalString("notes"),
	}

	field := "duration"
	if _, ok := rec[field]; !ok {
		field = "duration_minutes"
	}
	d, ok := r.number(field)
	switch {
	case !ok:
		r.fail("duration", "missing")
	case d < 0:
		r.fail(field, "must not be negative")
	default:
		s.DurationMinutes = d
	}
	return s, r.err
}
