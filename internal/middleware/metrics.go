package middleware

import (
	"net/http"
	"strconv"

	"geolife-pipeline/internal/metrics"
)

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// WrapHandler instruments a handler with request counting for the endpoint
func WrapHandler(endpoint string, handler http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler(recorder, r)
		metrics.HTTPRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(recorder.status)).Inc()
	})
}
