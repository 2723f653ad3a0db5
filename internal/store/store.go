package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	GetStudent(ctx context.Context, studentID string) (*models.StudentInfo, error)
	LoadStudentData(ctx context.Context, studentID string) (models.StudentData, error)
	ImportStudent(ctx context.Context, info *models.StudentInfo, data models.StudentData) error

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error

	SaveSnapshot(ctx context.Context, snap *models.Snapshot) error
	ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]*models.Snapshot, int, error)
}

type SnapshotFilter struct {
	StudentID string
	Period    string
	Page      int
	Limit     int
}
