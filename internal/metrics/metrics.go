// Package metrics exposes the Prometheus counters/histograms the server
// produces for its request-processing core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the collectors registered against one registry.
type Recorder struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	responseBytes   *prometheus.CounterVec
}

// New registers the server's collectors against reg and returns a
// Recorder for the ServiceAdapter to call after each request completes.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webdir_requests_total",
			Help: "Total requests processed, labeled by method and status class.",
		}, []string{"method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "webdir_request_duration_seconds",
			Help:    "Request handling latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		responseBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webdir_response_bytes_total",
			Help: "Total response bytes written to clients.",
		}, []string{"method"}),
	}
	reg.MustRegister(r.requestsTotal, r.requestDuration, r.responseBytes)
	return r
}

// Observe records one completed request.
func (r *Recorder) Observe(method string, status int, durationSeconds float64, bytesWritten int64) {
	r.requestsTotal.WithLabelValues(method, statusClass(status)).Inc()
	r.requestDuration.WithLabelValues(method).Observe(durationSeconds)
	r.responseBytes.WithLabelValues(method).Add(float64(bytesWritten))
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "other"
	}
}
