package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/kiranshivaraju/studentpulse/internal/normalize"
	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

var ErrInvalidImport = errors.New("invalid import")

// ImportResult reports what an import wrote.
type ImportResult struct {
	Student     *models.StudentInfo `json:"student"`
	Grades      int                 `json:"grades"`
	Attendance  int                 `json:"attendance"`
	StudyHabits int                 `json:"study_habits"`
	Invalidated int64               `json:"invalidated_cache_entries"`
}

// ImportStudent replaces a student's profile and records. Every row is
// validated first; a single malformed row rejects the whole import with a
// *normalize.MalformedRecordError. Cached analyses of the student are dropped.
func (s *PerformanceService) ImportStudent(ctx context.Context, studentID string, doc models.StudentImport) (*ImportResult, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, fmt.Errorf("%w: student id is required", ErrInvalidImport)
	}
	if _, err := normalize.Normalize(doc.Data, normalize.Options{Strict: true}); err != nil {
		return nil, err
	}
	if err := normalize.ValidateCarried(doc.Data); err != nil {
		return nil, err
	}

	data := doc.Data
	data.Attendance = lowerStatus(data.Attendance)

	info := &models.StudentInfo{
		ID:           studentID,
		Name:         doc.Name,
		Email:        doc.Email,
		Major:        doc.Major,
		AcademicYear: doc.AcademicYear,
	}
	if err := s.store.ImportStudent(ctx, info, data); err != nil {
		return nil, fmt.Errorf("import student: %w", err)
	}

	res := &ImportResult{
		Student:     info,
		Grades:      len(data.Grades),
		Attendance:  len(data.Attendance),
		StudyHabits: len(data.StudyHabits),
	}
	if s.cache != nil {
		n, err := s.cache.InvalidateStudent(ctx, studentID)
		if err != nil {
			s.logger.Warn("cache invalidation failed", "student_id", studentID, "error", err)
		}
		res.Invalidated = n
	}
	s.logger.Info("student imported",
		"student_id", studentID,
		"grades", res.Grades,
		"attendance", res.Attendance,
		"study_habits", res.StudyHabits,
	)
	return res, nil
}

// lowerStatus copies rows whose status is not already trimmed lower case;
// the attendance table only accepts the canonical spelling.
func lowerStatus(rows []models.RawRecord) []models.RawRecord {
	out := make([]models.RawRecord, len(rows))
	for i, row := range rows {
		status, ok := row["status"].(string)
		canonical := strings.ToLower(strings.TrimSpace(status))
		if !ok || status == canonical {
			out[i] = row
			continue
		}
		c := maps.Clone(row)
		c["status"] = canonical
		out[i] = c
	}
	return out
}
