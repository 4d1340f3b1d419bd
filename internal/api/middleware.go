package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter

	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestMiddleware tags each request with an id, logs its outcome, and
// converts panics into a 500 instead of tearing the connection down.
func (s *Server) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		start := time.Now()

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set("X-Request-Id", requestID)

		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("handler panicked",
					zap.String("request_id", requestID),
					zap.Any("panic", rec))
				http.Error(recorder, "internal server error", http.StatusInternalServerError)
			}

			s.log.Info("request served",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", recorder.status),
				zap.Duration("duration", time.Since(start)))
		}()

		next.ServeHTTP(recorder, r)
	})
}
