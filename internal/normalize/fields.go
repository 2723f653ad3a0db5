package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

// MaxMagnitude bounds numeric fields so sums and variances stay finite.
const MaxMagnitude = 1e9

// Accepted ISO-8601 layouts, tried in order. Layouts without an offset are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseDate parses an ISO-8601 date or datetime string.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// rowReader extracts typed fields from one raw row and records the first failure.
type rowReader struct {
	category string
	index    int
	rec      models.RawRecord
	err      *MalformedRecordError
}

func (r *rowReader) fail(field, reason string) {
	if r.err == nil {
		r.err = &MalformedRecordError{Category: r.category, Index: r.index, Field: field, Reason: reason}
	}
}

// requiredString returns a non-empty string field.
func (r *rowReader) requiredString(field string) string {
	v, ok := r.rec[field]
	if !ok || v == nil {
		r.fail(field, "missing")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(field, fmt.Sprintf("expected string, got %T", v))
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		r.fail(field, "empty")
	}
	return s
}

// optionalString returns the field when it is a string and "" otherwise.
func (r *rowReader) optionalString(field string) string {
	s, _ := r.rec[field].(string)
	return strings.TrimSpace(s)
}

// date reads a required date field given as a string or an already decoded time.
func (r *rowReader) date(field string) time.Time {
	v, ok := r.rec[field]
	if !ok || v == nil {
		r.fail(field, "missing")
		return time.Time{}
	}
	switch d := v.(type) {
	case time.Time:
		return d
	case string:
		t, err := ParseDate(d)
		if err != nil {
			r.fail(field, err.Error())
		}
		return t
	default:
		r.fail(field, fmt.Sprintf("expected ISO-8601 string, got %T", v))
		return time.Time{}
	}
}

// number reads a numeric field. present is false when the field is absent or null;
// a present non-numeric value fails the row.
func (r *rowReader) number(field string) (value float64, present bool) {
	v, ok := r.rec[field]
	if !ok || v == nil {
		return 0, false
	}
	f, ok := toFloat(v)
	if !ok {
		r.fail(field, fmt.Sprintf("expected number, got %T", v))
		return 0, true
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		r.fail(field, "not a finite number")
		return 0, true
	}
	if math.Abs(f) > MaxMagnitude {
		r.fail(field, "magnitude exceeds 1e9")
		return 0, true
	}
	return f, true
}

// optionalNumber reads a numeric field, ignoring values of the wrong type.
func (r *rowReader) optionalNumber(field string) *float64 {
	f, ok := toFloat(r.rec[field])
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > MaxMagnitude {
		return nil
	}
	return &f
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
