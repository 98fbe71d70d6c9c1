package middleware

import (
	"context"
	"net/http"
	"time"

	"swanctl/internal/logs"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ctxKey int

const requestIDKey ctxKey = 0

// RequestID tags every request with an id, echoed in X-Request-Id.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// GetRequestID returns the request id set by RequestID, if any.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Recoverer turns panics into 500s instead of dropped connections.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logs.Logger.WithFields(logrus.Fields{
					"request_id": GetRequestID(r.Context()),
					"path":       r.URL.Path,
				}).Errorf("panic: %v", rec)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// LoggerMW logs one line per request.
func LoggerMW(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)
		logs.Logger.WithFields(logrus.Fields{
			"request_id": GetRequestID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     sr.status,
			"duration":   time.Since(start).String(),
		}).Info("request")
	})
}
