package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kiranshivaraju/studentpulse/internal/api/response"
	"github.com/kiranshivaraju/studentpulse/internal/normalize"
	"github.com/kiranshivaraju/studentpulse/internal/service"
	"github.com/kiranshivaraju/studentpulse/internal/store"
)

// maxBodyBytes caps request bodies carrying student records.
const maxBodyBytes = 8 << 20

// writeError maps service and store errors onto the error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var bad *normalize.MalformedRecordError
	switch {
	case errors.As(err, &bad):
		response.Error(w, http.StatusUnprocessableEntity, response.CodeMalformedRecord,
			fmt.Sprintf("Malformed %s record at index %d", bad.Category, bad.Index),
			bad.Skipped())
	case errors.Is(err, service.ErrStudentNotFound):
		response.Error(w, http.StatusNotFound, response.CodeStudentNotFound, "Student not found", nil)
	case errors.Is(err, service.ErrKeyNotFound):
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "API key not found", nil)
	case errors.Is(err, service.ErrInvalidPeriod),
		errors.Is(err, service.ErrInvalidImport),
		errors.Is(err, service.ErrInvalidKey):
		response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, err.Error(), nil)
	case errors.Is(err, store.ErrDuplicateKey):
		response.Error(w, http.StatusConflict, response.CodeConflict, "Resource already exists", nil)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		response.Error(w, http.StatusInternalServerError, response.CodeInternal, "An unexpected error occurred", nil)
	}
}

func invalidRequest(w http.ResponseWriter, message string) {
	response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, message, nil)
}
