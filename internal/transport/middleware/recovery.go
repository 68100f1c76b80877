package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/drivelink/backoffice/internal"
	"github.com/drivelink/backoffice/pkg/logger"
)

// Recovery turns a panic into a 500 with the standard error body.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.From(r.Context()).ErrorContext(r.Context(), "panic recovered",
				"error", rec,
				"method", r.Method,
				"url", r.URL.String(),
				"stack", string(debug.Stack()))

			status, body := internal.NewInternalError("Internal server error", nil).ToHTTPResponse()
			writeJSON(w, status, body)
		}()

		next.ServeHTTP(w, r)
	})
}
