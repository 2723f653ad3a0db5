package normalize

import (
	"fmt"

	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

const (
	CategoryAssignments        = "assignments"
	CategoryPerformanceMetrics = "performance_metrics"
)

// ValidateCarried checks the categories that are stored but never analyzed.
// It returns the first row the database would reject as a *MalformedRecordError.
func ValidateCarried(raw models.StudentData) error {
	for i, rec := range raw.Assignments {
		r := rowReader{category: CategoryAssignments, index: i, rec: rec}
		r.requiredString("course_id")
		r.stringOrAbsent("title")
		r.stringOrAbsent("description")
		r.stringOrAbsent("status")
		r.optionalDate("due_date")
		r.optionalDate("submission_date")
		if r.err != nil {
			return r.err
		}
	}
	for i, rec := range raw.PerformanceMetrics {
		r := rowReader{category: CategoryPerformanceMetrics, index: i, rec: rec}
		r.requiredString("metric_type")
		if _, ok := r.number("value"); !ok {
			r.fail("value", "missing")
		}
		r.date("date")
		if r.err != nil {
			return r.err
		}
	}
	return nil
}

// stringOrAbsent fails the row when field is present with a non-string value.
func (r *rowReader) stringOrAbsent(field string) {
	if v, ok := r.rec[field]; ok && v != nil {
		if _, ok := v.(string); !ok {
			r.fail(field, fmt.Sprintf("expected string, got %T", v))
		}
	}
}

// optionalDate validates field only when it is present.
func (r *rowReader) optionalDate(field string) {
	if v, ok := r.rec[field]; ok && v != nil {
		r.date(field)
	}
}
