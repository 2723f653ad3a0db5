package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/kiranshivaraju/studentpulse/internal/api/response"
)

// Recovery turns a handler panic into a 500 envelope. If the handler had
// already started its response, the panic is only logged.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.Error("panic recovered",
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", middleware.GetReqID(r.Context()),
				"response_started", ww.Status() != 0,
			)
			if ww.Status() == 0 {
				response.Error(ww, http.StatusInternalServerError,
					response.CodeInternal, "An unexpected error occurred", nil)
			}
		}()
		next.ServeHTTP(ww, r)
	})
}
