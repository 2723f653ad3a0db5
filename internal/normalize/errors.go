package normalize

import (
	"errors"
	"fmt"

	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

// ErrMalformedRecord matches every *MalformedRecordError via errors.Is.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError reports a row that lacks a required field or carries a
// field of the wrong type.
type MalformedRecordError struct {
	Category string
	Index    int
	Field    string
	Reason   string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record %d: field %q: %s", e.Category, e.Index, e.Field, e.Reason)
}

func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }

// Skipped converts the error into its serializable form.
func (e *MalformedRecordError) Skipped() models.SkippedRecord {
	return models.SkippedRecord{
		Category: e.Category,
		Index:    e.Index,
		Field:    e.Field,
		Reason:   e.Reason,
	}
}
