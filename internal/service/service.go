// Package service runs analyses for API and CLI callers: it loads records,
// normalizes them, consults the result cache and stores snapshots.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kiranshivaraju/studentpulse/internal/analysis"
	"github.com/kiranshivaraju/studentpulse/internal/cache"
	"github.com/kiranshivaraju/studentpulse/internal/metrics"
	"github.com/kiranshivaraju/studentpulse/internal/normalize"
	"github.com/kiranshivaraju/studentpulse/internal/store"
	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrInvalidPeriod   = errors.New("invalid period")
)

// Period selects the record window of a student analysis.
type Period string

const (
	PeriodSemester Period = "semester"
	PeriodYear     Period = "year"
	PeriodAll      Period = "all"
)

// ParsePeriod validates a period name. An empty name means PeriodAll.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return PeriodAll, nil
	case PeriodSemester, PeriodYear, PeriodAll:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q (want semester, year or all)", ErrInvalidPeriod, s)
	}
}

// Options tunes a PerformanceService.
type Options struct {
	CacheTTL         time.Duration
	StrictRecords    bool
	SnapshotsEnabled bool
	Metrics          *metrics.Recorder
	Logger           *slog.Logger
	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
}

// PerformanceService is safe for concurrent use.
type PerformanceService struct {
	store  store.Store
	cache  cache.Cache
	engine *analysis.Engine
	opts   Options
	logger *slog.Logger
}

func New(st store.Store, c cache.Cache, engine *analysis.Engine, opts Options) *PerformanceService {
	if engine == nil {
		engine = analysis.NewEngine()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &PerformanceService{store: st, cache: c, engine: engine, opts: opts, logger: logger}
}

// AnalyzeResult is an ad-hoc analysis of caller-supplied records.
type AnalyzeResult struct {
	Analysis models.AnalysisResult `json:"analysis"`
	Skipped  []models.SkippedRecord `json:"skipped_records"`
}

// Analyze normalizes and analyzes data without touching the store or cache.
// strict overrides the configured record policy when true.
func (s *PerformanceService) Analyze(ctx context.Context, data models.StudentData, strict bool) (*AnalyzeResult, error) {
	start := time.Now()
	records, err := normalize.Normalize(data, normalize.Options{Strict: strict || s.opts.StrictRecords})
	if err != nil {
		s.opts.Metrics.ObserveAnalysis(metrics.SourceAPI, metrics.OutcomeMalformed, time.Since(start))
		return nil, err
	}
	s.opts.Metrics.Skipped(records.Skipped)

	result := s.engine.Analyze(records)
	s.opts.Metrics.ObserveAnalysis(metrics.SourceAPI, metrics.OutcomeOK, time.Since(start))

	skipped := records.Skipped
	if skipped == nil {
		skipped = []models.SkippedRecord{}
	}
	return &AnalyzeResult{Analysis: result, Skipped: skipped}, nil
}

// StudentAnalysis is the analysis of one stored student over a period.
type StudentAnalysis struct {
	Student   *models.StudentInfo
	Period    Period
	Window    normalize.Window
	InputHash string
	Cached    bool
	Skipped   []models.SkippedRecord
	Result    models.AnalysisResult
}

// AnalyzeStudent loads the student's records, restricts them to period and
// returns the analysis, served from cache when the normalized input is unchanged.
func (s *PerformanceService) AnalyzeStudent(ctx context.Context, studentID string, period Period) (*StudentAnalysis, error) {
	if _, err := ParsePeriod(string(period)); err != nil {
		return nil, err
	}
	if period == "" {
		period = PeriodAll
	}

	student, err := s.store.GetStudent(ctx, studentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}

	raw, err := s.store.LoadStudentData(ctx, studentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load student data: %w", err)
	}

	start := time.Now()
	window := s.window(period)
	records, err := normalize.Normalize(raw, normalize.Options{Strict: s.opts.StrictRecords, Window: window})
	if err != nil {
		s.opts.Metrics.ObserveAnalysis(metrics.SourceStudent, metrics.OutcomeMalformed, time.Since(start))
		return nil, err
	}
	if len(records.Skipped) > 0 {
		s.opts.Metrics.Skipped(records.Skipped)
		s.logger.Warn("skipped malformed records", "student_id", studentID, "count", len(records.Skipped))
	}

	hash, err := InputHash(records)
	if err != nil {
		return nil, err
	}

	out := &StudentAnalysis{
		Student:   student,
		Period:    period,
		Window:    window,
		InputHash: hash,
		Skipped:   records.Skipped,
	}

	key := cache.AnalysisKey(studentID, hash)
	if result, ok := s.cached(ctx, key); ok {
		out.Result = result
		out.Cached = true
		return out, nil
	}

	out.Result = s.engine.Analyze(records)
	s.opts.Metrics.ObserveAnalysis(metrics.SourceStudent, metrics.OutcomeOK, time.Since(start))

	s.remember(ctx, key, out)
	return out, nil
}

// window bounds the records of period. PeriodAll is unbounded so that records
// imported with dates before the student profile existed are kept.
func (s *PerformanceService) window(period Period) normalize.Window {
	now := s.opts.Now().UTC()
	switch period {
	case PeriodSemester:
		return normalize.Window{Start: now.AddDate(0, 0, -90), End: now}
	case PeriodYear:
		return normalize.Window{Start: now.AddDate(0, 0, -365), End: now}
	default:
		return normalize.Window{}
	}
}

// cached reads a result from the cache. Cache errors are logged and treated as misses.
func (s *PerformanceService) cached(ctx context.Context, key string) (models.AnalysisResult, bool) {
	if s.cache == nil {
		return models.AnalysisResult{}, false
	}
	b, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.opts.Metrics.CacheLookup(metrics.CacheError)
		s.logger.Warn("analysis cache read failed", "key", key, "error", err)
		return models.AnalysisResult{}, false
	}
	if !found {
		s.opts.Metrics.CacheLookup(metrics.CacheMiss)
		return models.AnalysisResult{}, false
	}
	var result models.AnalysisResult
	if err := json.Unmarshal(b, &result); err != nil {
		s.opts.Metrics.CacheLookup(metrics.CacheError)
		s.logger.Warn("discarding undecodable cache entry", "key", key, "error", err)
		return models.AnalysisResult{}, false
	}
	s.opts.Metrics.CacheLookup(metrics.CacheHit)
	return result, true
}

// remember writes the fresh result to the cache and, when enabled, as a snapshot.
// Both writes are best effort.
func (s *PerformanceService) remember(ctx context.Context, key string, a *StudentAnalysis) {
	if s.cache != nil {
		b, err := json.Marshal(a.Result)
		if err == nil {
			err = s.cache.Set(ctx, key, b, s.opts.CacheTTL)
		}
		if err != nil {
			s.logger.Warn("analysis cache write failed", "key", key, "error", err)
		}
	}

	if !s.opts.SnapshotsEnabled {
		return
	}
	snap := &models.Snapshot{
		ID:        uuid.New(),
		StudentID: a.Student.ID,
		Period:    string(a.Period),
		InputHash: a.InputHash,
		Result:    a.Result,
		CreatedAt: s.opts.Now().UTC(),
	}
	if err := s.store.SaveSnapshot(ctx, snap); err != nil {
		s.logger.Warn("snapshot write failed", "student_id", a.Student.ID, "error", err)
	}
}

// TrendsView is the windowed trend report of a student.
type TrendsView struct {
	StudentID string    `json:"student_id"`
	Period    Period    `json:"period"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Trends    Trends    `json:"trends"`
}

type Trends struct {
	GradeTrends      map[string]models.Trend  `json:"grade_trends"`
	AttendanceTrends *models.AttendanceTrends `json:"attendance_trends"`
	StudyTrends      *models.StudyTrends      `json:"study_trends"`
}

// StudentTrends projects AnalyzeStudent onto the trend series of each category.
func (s *PerformanceService) StudentTrends(ctx context.Context, studentID string, period Period) (*TrendsView, error) {
	a, err := s.AnalyzeStudent(ctx, studentID, period)
	if err != nil {
		return nil, err
	}

	startDate, endDate := a.Window.Start, a.Window.End
	if a.Period == PeriodAll {
		startDate, endDate = a.Student.CreatedAt.UTC(), s.opts.Now().UTC()
	}

	grades := make(map[string]models.Trend, len(a.Result.GradeAnalysis.Trends))
	for course, info := range a.Result.GradeAnalysis.Trends {
		grades[course] = info.Trend
	}
	return &TrendsView{
		StudentID: studentID,
		Period:    a.Period,
		StartDate: startDate,
		EndDate:   endDate,
		Trends: Trends{
			GradeTrends:      grades,
			AttendanceTrends: a.Result.AttendanceAnalysis.Trends,
			StudyTrends:      a.Result.StudyHabitsAnalysis.Trends,
		},
	}, nil
}

// Snapshots lists stored analyses of a student, newest first.
func (s *PerformanceService) Snapshots(ctx context.Context, studentID string, page, limit int) ([]*models.Snapshot, int, error) {
	if _, err := s.store.GetStudent(ctx, studentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, 0, ErrStudentNotFound
		}
		return nil, 0, fmt.Errorf("get student: %w", err)
	}
	snaps, total, err := s.store.ListSnapshots(ctx, store.SnapshotFilter{StudentID: studentID, Page: page, Limit: limit})
	if err != nil {
		return nil, 0, fmt.Errorf("list snapshots: %w", err)
	}
	return snaps, total, nil
}

// InputHash fingerprints the analyzed records. Two inputs with the same hash
// produce the same analysis, whatever window selected them.
func InputHash(records models.NormalizedRecords) (string, error) {
	b, err := json.Marshal(struct {
		Grades      []models.GradeRecord      `json:"grades"`
		Attendance  []models.AttendanceRecord `json:"attendance"`
		StudyHabits []models.StudyRecord      `json:"study_habits"`
	}{records.Grades, records.Attendance, records.StudyHabits})
	if err != nil {
		return "", fmt.Errorf("hash records: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
