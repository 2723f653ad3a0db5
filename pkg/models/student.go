// Package models contains shared data models used across the StudentPulse codebase.
package models

import "time"

// RawRecord is a single input row as supplied by the persistence layer or an API
// client. Dates are ISO-8601 strings; numeric fields may arrive as any JSON number.
type RawRecord map[string]any

// StudentData is the raw, category-keyed input of one analysis call.
// Assignments and PerformanceMetrics are carried through but not analyzed.
type StudentData struct {
	Grades             []RawRecord `json:"grades"              yaml:"grades"`
	Attendance         []RawRecord `json:"attendance"          yaml:"attendance"`
	StudyHabits        []RawRecord `json:"study_habits"        yaml:"study_habits"`
	Assignments        []RawRecord `json:"assignments"         yaml:"assignments"`
	PerformanceMetrics []RawRecord `json:"performance_metrics" yaml:"performance_metrics"`
}

// StudentInfo identifies the student an analysis belongs to.
type StudentInfo struct {
	ID           string    `db:"student_id"    json:"id"`
	Name         string    `db:"name"          json:"name"`
	Email        string    `db:"email"         json:"-"`
	Major        string    `db:"major"         json:"major"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
}

// StudentImport is the document accepted by the import endpoint and
// `pulsectl import`: a profile plus the student's raw records.
type StudentImport struct {
	Name         string      `json:"name"          yaml:"name"`
	Email        string      `json:"email"         yaml:"email"`
	Major        string      `json:"major"         yaml:"major"`
	AcademicYear string      `json:"academic_year" yaml:"academic_year"`
	Data         StudentData `json:"data"          yaml:"data"`
}
