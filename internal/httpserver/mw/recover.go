package mw

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aryodp/edgegate/internal/logger"
)

// Recover converts a handler panic into a 500 JSON error body instead
// of killing the connection with a blank page. The process never dies
// on a request panic.
func Recover(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil || rec == http.ErrAbortHandler {
					return
				}

				log.Error("panic recovered",
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path),
					logger.String("panic", fmt.Sprint(rec)))

				// Best effort: if the handler already started the
				// response this write is a no-op on the status line.
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": fmt.Sprint(rec)})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
