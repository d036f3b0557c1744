package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/sparklesav/sparkle-clean/pkg/logging"
)

// Recoverer converts panics anywhere below it into a generic JSON 500. The
// full panic value and stack are logged server-side; nothing internal
// reaches the caller.
func Recoverer(logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						"panic", rec,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error":     "Internal server error. Please try again later.",
						"timestamp": time.Now().UTC().Format(time.RFC3339),
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
