package models

import "time"

// Attendance statuses accepted by the normalizer.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
)

// GradeRecord is a normalized grade entry. A nil Score marks work that has not
// been graded yet.
type GradeRecord struct {
	CourseID  string    `json:"course_id"`
	Score     *float64  `json:"score,omitempty"`
	MaxScore  *float64  `json:"max_score,omitempty"`
	GradeType string    `json:"grade_type,omitempty"`
	Date      time.Time `json:"date"`
}

// Graded reports whether the record carries a score.
func (g GradeRecord) Graded() bool { return g.Score != nil }

// AttendanceRecord is a normalized attendance entry.
type AttendanceRecord struct {
	CourseID string    `json:"course_id"`
	Status   string    `json:"status"`
	Date     time.Time `json:"date"`
}

// StudyRecord is a normalized study session.
type StudyRecord struct {
	Subject         string    `json:"subject"`
	DurationMinutes float64   `json:"duration_minutes"`
	ActivityType    string    `json:"activity_type,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Date            time.Time `json:"date"`
}

// GroupSeries is a date-ordered run of records sharing a course or subject key.
type GroupSeries[T any] struct {
	Key     string `json:"key"`
	Records []T    `json:"records"`
}

// SkippedRecord describes an input row the normalizer dropped.
type SkippedRecord struct {
	Category string `json:"category"`
	Index    int    `json:"index"`
	Field    string `json:"field"`
	Reason   string `json:"reason"`
}

// NormalizedRecords is the normalizer's output: flat date-sorted slices plus the
// same records grouped by course or subject (groups in ascending key order).
type NormalizedRecords struct {
	Grades      []GradeRecord      `json:"grades"`
	Attendance  []AttendanceRecord `json:"attendance"`
	StudyHabits []StudyRecord      `json:"study_habits"`

	GradesByCourse     []GroupSeries[GradeRecord]      `json:"-"`
	AttendanceByCourse []GroupSeries[AttendanceRecord] `json:"-"`
	StudyBySubject     []GroupSeries[StudyRecord]      `json:"-"`

	Skipped []SkippedRecord `json:"skipped,omitempty"`
}
