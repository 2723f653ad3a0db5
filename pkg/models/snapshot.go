package models

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is a stored analysis of one student at one point in time.
// InputHash identifies the normalized records the result was computed from.
type Snapshot struct {
	ID        uuid.UUID      `db:"id"         json:"id"`
	StudentID string         `db:"student_id" json:"student_id"`
	Period    string         `db:"period"     json:"period"`
	InputHash string         `db:"input_hash" json:"input_hash"`
	Result    AnalysisResult `db:"result"     json:"result"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
