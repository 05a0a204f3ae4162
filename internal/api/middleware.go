package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// statusRecorder captures the status code written by a handler so the
// access log and metrics can report it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withObservability tags each request with a correlation id, logs it, and
// records Prometheus counters and latency.
func (h *Handler) withObservability(name string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		elapsed := time.Since(start)
		requestsTotal.WithLabelValues(name, r.Method, strconv.Itoa(rec.status)).Inc()
		requestDuration.WithLabelValues(name, r.Method).Observe(elapsed.Seconds())
		h.log.Info("request",
			zap.String("req", requestID),
			zap.String("handler", name),
			zap.String("method", r.Method),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", elapsed))
	})
}
