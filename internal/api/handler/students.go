package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kiranshivaraju/studentpulse/internal/api/response"
	"github.com/kiranshivaraju/studentpulse/internal/service"
	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// StudentService is the slice of service.PerformanceService the student
// routes use.
type StudentService interface {
	AnalyzeStudent(ctx context.Context, studentID string, period service.Period) (*service.StudentAnalysis, error)
	StudentTrends(ctx context.Context, studentID string, period service.Period) (*service.TrendsView, error)
	Snapshots(ctx context.Context, studentID string, page, limit int) ([]*models.Snapshot, int, error)
	ImportStudent(ctx context.Context, studentID string, doc models.StudentImport) (*service.ImportResult, error)
}

// Students serves /api/v1/students/{studentID}/... routes.
type Students struct {
	svc StudentService
}

func NewStudents(svc StudentService) *Students {
	return &Students{svc: svc}
}

type performanceResponse struct {
	StudentInfo *models.StudentInfo    `json:"student_info"`
	Analysis    models.AnalysisResult  `json:"analysis"`
	Period      service.Period         `json:"period"`
	InputHash   string                 `json:"input_hash"`
	Cached      bool                   `json:"cached"`
	Skipped     []models.SkippedRecord `json:"skipped_records"`
}

// Performance handles GET /students/{studentID}/performance.
func (h *Students) Performance(w http.ResponseWriter, r *http.Request) {
	a, ok := h.analyze(w, r)
	if !ok {
		return
	}
	skipped := a.Skipped
	if skipped == nil {
		skipped = []models.SkippedRecord{}
	}
	response.JSON(w, performanceResponse{
		StudentInfo: a.Student,
		Analysis:    a.Result,
		Period:      a.Period,
		InputHash:   a.InputHash,
		Cached:      a.Cached,
		Skipped:     skipped,
	})
}

// Predictions handles GET /students/{studentID}/predictions.
func (h *Students) Predictions(w http.ResponseWriter, r *http.Request) {
	a, ok := h.analyze(w, r)
	if !ok {
		return
	}
	response.JSON(w, map[string]any{
		"student_id":  a.Student.ID,
		"predictions": a.Result.Predictions,
	})
}

// ImprovementAreas handles GET /students/{studentID}/improvement-areas.
func (h *Students) ImprovementAreas(w http.ResponseWriter, r *http.Request) {
	a, ok := h.analyze(w, r)
	if !ok {
		return
	}
	response.JSON(w, map[string]any{
		"student_id":        a.Student.ID,
		"improvement_areas": a.Result.ImprovementAreas,
	})
}

// Trends handles GET /students/{studentID}/trends?period=semester|year|all.
func (h *Students) Trends(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	view, err := h.svc.StudentTrends(r.Context(), chi.URLParam(r, "studentID"), period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, view)
}

// Snapshots handles GET /students/{studentID}/snapshots?page=&limit=.
func (h *Students) Snapshots(w http.ResponseWriter, r *http.Request) {
	page, limit, ok := parsePage(w, r)
	if !ok {
		return
	}
	snaps, total, err := h.svc.Snapshots(r.Context(), chi.URLParam(r, "studentID"), page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if snaps == nil {
		snaps = []*models.Snapshot{}
	}
	response.Collection(w, snaps, response.NewPaginationMeta(page, limit, total))
}

// Import handles PUT /admin/students/{studentID}.
func (h *Students) Import(w http.ResponseWriter, r *http.Request) {
	var doc models.StudentImport
	if !decodeJSON(w, r, &doc) {
		return
	}
	res, err := h.svc.ImportStudent(r.Context(), chi.URLParam(r, "studentID"), doc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, res)
}

func (h *Students) analyze(w http.ResponseWriter, r *http.Request) (*service.StudentAnalysis, bool) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return nil, false
	}
	a, err := h.svc.AnalyzeStudent(r.Context(), chi.URLParam(r, "studentID"), period)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return a, true
}

func parsePeriod(w http.ResponseWriter, r *http.Request) (service.Period, bool) {
	p, err := service.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		invalidRequest(w, "period must be one of semester, year, all")
		return "", false
	}
	return p, true
}

// parsePage applies the default and the cap on limit; page starts at 1.
func parsePage(w http.ResponseWriter, r *http.Request) (page, limit int, ok bool) {
	q := r.URL.Query()
	page, limit = 1, defaultPageLimit
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			invalidRequest(w, "page must be a positive integer")
			return 0, 0, false
		}
		page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			invalidRequest(w, "limit must be a positive integer")
			return 0, 0, false
		}
		limit = min(n, maxPageLimit)
	}
	return page, limit, true
}
