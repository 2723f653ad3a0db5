package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error codes carried in the error envelope.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInvalidToken     = "INVALID_TOKEN"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeStudentNotFound  = "STUDENT_NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeConflict         = "CONFLICT"
	CodeMalformedRecord  = "MALFORMED_RECORD"
	CodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	CodeInternal         = "INTERNAL_ERROR"
	CodeNotImplemented   = "NOT_IMPLEMENTED"
	CodeDegraded         = "DEGRADED"
)

type envelope struct {
	Data any `json:"data"`
}

type collectionEnvelope struct {
	Data any            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type PaginationMeta struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
}

func JSON(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Data: data})
}

func Created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, envelope{Data: data})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func Collection(w http.ResponseWriter, data any, meta PaginationMeta) {
	writeJSON(w, http.StatusOK, collectionEnvelope{Data: data, Meta: meta})
}

func Error(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

// NewPaginationMeta fills HasNext from the page window.
func NewPaginationMeta(page, limit, total int) PaginationMeta {
	return PaginationMeta{Page: page, Limit: limit, Total: total, HasNext: page*limit < total}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
