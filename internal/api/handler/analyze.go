package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kiranshivaraju/studentpulse/internal/api/response"
	"github.com/kiranshivaraju/studentpulse/internal/service"
	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

// Analyzer runs ad-hoc analyses.
type Analyzer interface {
	Analyze(ctx context.Context, data models.StudentData, strict bool) (*service.AnalyzeResult, error)
}

// NewAnalyzeHandler returns an http.HandlerFunc for POST /api/v1/analyze.
// The body is a StudentData document; ?strict=true rejects the request on
// the first malformed row instead of skipping it.
func NewAnalyzeHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		strict := false
		if v := r.URL.Query().Get("strict"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				invalidRequest(w, "strict must be a boolean")
				return
			}
			strict = b
		}

		var data models.StudentData
		if !decodeJSON(w, r, &data) {
			return
		}

		result, err := svc.Analyze(r.Context(), data, strict)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, result)
	}
}

// decodeJSON reads a size-capped body into v. Numbers stay json.Number so
// record values reach the normalizer unconverted.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		invalidRequest(w, "Invalid JSON body")
		return false
	}
	return true
}
