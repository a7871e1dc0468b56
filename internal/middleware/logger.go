package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"server/internal/infra"
)

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Logger emits one structured line per request and feeds the request
// counter. The route label uses the raw path; the API surface is small
// enough that cardinality is not a concern.
func Logger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			infra.RequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rw.status)).Inc()

			l.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.status).
				Str("request_id", RequestIDFromContext(r.Context())).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		})
	}
}
