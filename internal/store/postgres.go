package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/studentpulse/internal/normalize"
	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Students ---

func (s *PostgresStore) GetStudent(ctx context.Context, studentID string) (*models.StudentInfo, error) {
	var st models.StudentInfo
	var email *string
	err := s.pool.QueryRow(ctx,
		`SELECT student_id, name, email, major, academic_year, created_at FROM students WHERE student_id = $1`,
		studentID,
	).Scan(&st.ID, &st.Name, &email, &st.Major, &st.AcademicYear, &st.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if email != nil {
		st.Email = *email
	}
	return &st, nil
}

// LoadStudentData returns every record of the student as raw rows with RFC 3339
// dates, the same shape API clients post to the analyze endpoint.
func (s *PostgresStore) LoadStudentData(ctx context.Context, studentID string) (models.StudentData, error) {
	var pk int64
	err := s.pool.QueryRow(ctx, `SELECT id FROM students WHERE student_id = $1`, studentID).Scan(&pk)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.StudentData{}, ErrNotFound
	}
	if err != nil {
		return models.StudentData{}, fmt.Errorf("get student id: %w", err)
	}

	var data models.StudentData
	if data.Grades, err = s.loadGrades(ctx, pk); err != nil {
		return models.StudentData{}, err
	}
	if data.Attendance, err = s.loadAttendance(ctx, pk); err != nil {
		return models.StudentData{}, err
	}
	if data.StudyHabits, err = s.loadStudyHabits(ctx, pk); err != nil {
		return models.StudentData{}, err
	}
	if data.Assignments, err = s.loadAssignments(ctx, pk); err != nil {
		return models.StudentData{}, err
	}
	if data.PerformanceMetrics, err = s.loadPerformanceMetrics(ctx, pk); err != nil {
		return models.StudentData{}, err
	}
	return data, nil
}

func (s *PostgresStore) loadGrades(ctx context.Context, pk int64) ([]models.RawRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT course_id, assignment_id, score, max_score, grade_type, date
		 FROM grades WHERE student_id = $1 ORDER BY date, id`, pk)
	if err != nil {
		return nil, fmt.Errorf("load grades: %w", err)
	}
	defer rows.Close()

	var out []models.RawRecord
	for rows.Next() {
		var (
			courseID            string
			assignmentID, gtype *string
			score, maxScore     *float64
			date                time.Time
		)
		if err := rows.Scan(&courseID, &assignmentID, &score, &maxScore, &gtype, &date); err != nil {
			return nil, fmt.Errorf("scan grade: %w", err)
		}
		rec := models.RawRecord{"course_id": courseID, "date": formatTime(date), "score": nil}
		setOptional(rec, "assignment_id", assignmentID)
		setOptional(rec, "grade_type", gtype)
		if score != nil {
			rec["score"] = *score
		}
		if maxScore != nil {
			rec["max_score"] = *maxScore
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) loadAttendance(ctx context.Context, pk int64) ([]models.RawRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT course_id, status, date FROM attendance WHERE student_id = $1 ORDER BY date, id`, pk)
	if err != nil {
		return nil, fmt.Errorf("load attendance: %w", err)
	}
	defer rows.Close()

	var out []models.RawRecord
	for rows.Next() {
		var courseID, status string
		var date time.Time
		if err := rows.Scan(&courseID, &status, &date); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		out = append(out, models.RawRecord{"course_id": courseID, "status": status, "date": formatTime(date)})
	}
	return out, rows.Err()
}

func (s *PostgresStore) loadStudyHabits(ctx context.Context, pk int64) ([]models.RawRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT subject, duration, activity_type, notes, date FROM study_habits WHERE student_id = $1 ORDER BY date, id`, pk)
	if err != nil {
		return nil, fmt.Errorf("load study habits: %w", err)
	}
	defer rows.Close()

	var out []models.RawRecord
	for rows.Next() {
		var (
			subject             string
			duration            float64
			activityType, notes *string
			date                time.Time
		)
		if err := rows.Scan(&subject, &duration, &activityType, &notes, &date); err != nil {
			return nil, fmt.Errorf("scan study habit: %w", err)
		}
		rec := models.RawRecord{"subject": subject, "duration": duration, "date": formatTime(date)}
		setOptional(rec, "activity_type", activityType)
		setOptional(rec, "notes", notes)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) loadAssignments(ctx context.Context, pk int64) ([]models.RawRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT course_id, title, description, due_date, status, submission_date
		 FROM assignments WHERE student_id = $1 ORDER BY due_date NULLS LAST, id`, pk)
	if err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}
	defer rows.Close()

	var out []models.RawRecord
	for rows.Next() {
		var (
			courseID, title, status string
			description             *string
			dueDate, submitted      *time.Time
		)
		if err := rows.Scan(&courseID, &title, &description, &dueDate, &status, &submitted); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		rec := models.RawRecord{
			"course_id":       courseID,
			"title":           title,
			"status":          status,
			"due_date":        nil,
			"submission_date": nil,
		}
		setOptional(rec, "description", description)
		if dueDate != nil {
			rec["due_date"] = formatTime(*dueDate)
		}
		if submitted != nil {
			rec["submission_date"] = formatTime(*submitted)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) loadPerformanceMetrics(ctx context.Context, pk int64) ([]models.RawRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT metric_type, value, metadata, date FROM performance_metrics WHERE student_id = $1 ORDER BY date, id`, pk)
	if err != nil {
		return nil, fmt.Errorf("load performance metrics: %w", err)
	}
	defer rows.Close()

	var out []models.RawRecord
	for rows.Next() {
		var (
			metricType string
			value      float64
			metadata   map[string]any
			date       time.Time
		)
		if err := rows.Scan(&metricType, &value, &metadata, &date); err != nil {
			return nil, fmt.Errorf("scan performance metric: %w", err)
		}
		out = append(out, models.RawRecord{
			"metric_type": metricType,
			"value":       value,
			"metadata":    metadata,
			"date":        formatTime(date),
		})
	}
	return out, rows.Err()
}

// ImportStudent upserts the student and replaces all of its record rows in one
// transaction. Rows must already be valid; a malformed row aborts the whole import.
func (s *PostgresStore) ImportStudent(ctx context.Context, info *models.StudentInfo, data models.StudentData) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var email *string
	if info.Email != "" {
		email = &info.Email
	}
	var pk int64
	err = tx.QueryRow(ctx,
		`INSERT INTO students (student_id, name, email, major, academic_year)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (student_id) DO UPDATE SET
		   name = EXCLUDED.name,
		   email = EXCLUDED.email,
		   major = EXCLUDED.major,
		   academic_year = EXCLUDED.academic_year,
		   updated_at = NOW()
		 RETURNING id, created_at`,
		info.ID, info.Name, email, info.Major, info.AcademicYear,
	).Scan(&pk, &info.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("upsert student: %w", err)
	}

	// An import replaces every record of the student.
	for _, table := range []string{"grades", "attendance", "study_habits", "assignments", "performance_metrics"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE student_id = $1", pk); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	batch := &pgx.Batch{}
	for i, rec := range data.Grades {
		date, err := rawTime(rec, "date")
		if err != nil {
			return fmt.Errorf("grade %d: %w", i, err)
		}
		batch.Queue(`INSERT INTO grades (student_id, course_id, assignment_id, score, max_score, grade_type, date)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			pk, rec["course_id"], rec["assignment_id"], rawNumber(rec["score"]), rawNumber(rec["max_score"]), rec["grade_type"], date)
	}
	for i, rec := range data.Attendance {
		date, err := rawTime(rec, "date")
		if err != nil {
			return fmt.Errorf("attendance %d: %w", i, err)
		}
		batch.Queue(`INSERT INTO attendance (student_id, course_id, status, date) VALUES ($1, $2, $3, $4)`,
			pk, rec["course_id"], rec["status"], date)
	}
	for i, rec := range data.StudyHabits {
		date, err := rawTime(rec, "date")
		if err != nil {
			return fmt.Errorf("study habit %d: %w", i, err)
		}
		duration := rec["duration"]
		if duration == nil {
			duration = rec["duration_minutes"]
		}
		batch.Queue(`INSERT INTO study_habits (student_id, subject, duration, activity_type, notes, date)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			pk, rec["subject"], rawNumber(duration), rec["activity_type"], rec["notes"], date)
	}
	for i, rec := range data.Assignments {
		due, err := optionalRawTime(rec, "due_date")
		if err != nil {
			return fmt.Errorf("assignment %d: %w", i, err)
		}
		submitted, err := optionalRawTime(rec, "submission_date")
		if err != nil {
			return fmt.Errorf("assignment %d: %w", i, err)
		}
		status := rec["status"]
		if status == nil {
			status = "pending"
		}
		batch.Queue(`INSERT INTO assignments (student_id, course_id, title, description, due_date, status, submission_date)
			VALUES ($1, $2, COALESCE($3, ''), $4, $5, $6, $7)`,
			pk, rec["course_id"], rec["title"], rec["description"], due, status, submitted)
	}
	for i, rec := range data.PerformanceMetrics {
		date, err := rawTime(rec, "date")
		if err != nil {
			return fmt.Errorf("performance metric %d: %w", i, err)
		}
		batch.Queue(`INSERT INTO performance_metrics (student_id, metric_type, value, metadata, date)
			VALUES ($1, $2, $3, $4, $5)`,
			pk, rec["metric_type"], rawNumber(rec["value"]), rec["metadata"], date)
	}

	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert records: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	return scanAPIKeys(rows)
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		key.ID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	return scanAPIKeys(rows)
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAPIKeys(rows pgx.Rows) ([]*models.APIKey, error) {
	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

// --- Snapshots ---

func (s *PostgresStore) SaveSnapshot(ctx context.Context, snap *models.Snapshot) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO analysis_snapshots (id, student_id, period, input_hash, result, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		snap.ID, snap.StudentID, snap.Period, snap.InputHash, snap.Result, snap.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		if isForeignKeyError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]*models.Snapshot, int, error) {
	where := "student_id = $1"
	args := []any{filter.StudentID}
	argIdx := 2
	if filter.Period != "" {
		where += fmt.Sprintf(" AND period = $%d", argIdx)
		args = append(args, filter.Period)
		argIdx++
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM analysis_snapshots WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count snapshots: %w", err)
	}

	// Normalize pagination
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf(
		`SELECT id, student_id, period, input_hash, result, created_at
		 FROM analysis_snapshots WHERE %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*models.Snapshot
	for rows.Next() {
		var sn models.Snapshot
		if err := rows.Scan(&sn.ID, &sn.StudentID, &sn.Period, &sn.InputHash, &sn.Result, &sn.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, &sn)
	}
	return snaps, total, rows.Err()
}

// --- helpers ---

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func setOptional(rec models.RawRecord, key string, v *string) {
	if v != nil {
		rec[key] = *v
	}
}

// rawNumber converts decoder-specific numbers (json.Number, YAML ints) to
// float64 for DOUBLE PRECISION columns. Other values pass through.
func rawNumber(v any) any {
	switch n := v.(type) {
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return v
}

// rawTime reads a date field of an import row, accepting the same ISO-8601
// forms as the analysis input.
func rawTime(rec models.RawRecord, key string) (time.Time, error) {
	t, err := optionalRawTime(rec, key)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, fmt.Errorf("%s is required", key)
	}
	return *t, nil
}

func optionalRawTime(rec models.RawRecord, key string) (*time.Time, error) {
	switch v := rec[key].(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &v, nil
	case string:
		t, err := normalize.ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return &t, nil
	default:
		return nil, fmt.Errorf("%s: expected date string, got %T", key, v)
	}
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

func isForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" // foreign_key_violation
	}
	return false
}
