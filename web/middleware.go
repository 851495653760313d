package web

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CallerIDHeader carries the Discord id of the staff member or bot acting
// on the caller's behalf. The value is untrusted input; every operation
// resolves it against the role tables before acting.
const CallerIDHeader = "X-Caller-ID"

type contextKey int

const contextKeyCallerID contextKey = iota

var metricRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "enlacevrc_http_requests_total",
	Help: "Handled API requests, by method and status class",
}, []string{"method", "class"})

// CallerIDFromContext returns the raw caller id the request presented, or
// an empty string when none was sent.
func CallerIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyCallerID).(string)
	return id
}

// MiddlewareExtractCaller copies the caller header into the request context
// so handlers don't touch headers directly.
func MiddlewareExtractCaller(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), contextKeyCallerID, r.Header.Get(CallerIDHeader))
		inner.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// MiddlewareLogRequests logs one line per request with the outcome.
func MiddlewareLogRequests(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		inner.ServeHTTP(recorder, r)

		metricRequests.WithLabelValues(r.Method, statusClass(recorder.status)).Inc()
		logger.WithField("status", recorder.status).
			WithField("took", time.Since(started).String()).
			Infof("%s %s", r.Method, r.URL.Path)
	})
}

func statusClass(status int) string {
	switch {
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	}
	return "5xx"
}
