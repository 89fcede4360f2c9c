// Package serviceadapter maps HTTP requests to a Processor and translates
// its errors into status codes and small HTML error pages, per §4.9.
package serviceadapter

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/caddyserver/webdir/internal/httperr"
	"github.com/caddyserver/webdir/internal/processor"
)

// Adapter presents the Processor as a chi-mountable http.Handler.
type Adapter struct {
	proc   *processor.Processor
	logger *zap.Logger
}

func New(proc *processor.Processor, logger *zap.Logger) *Adapter {
	return &Adapter{proc: proc, logger: logger}
}

// Mount attaches the adapter to a fresh chi.Mux: request-ID and panic
// recovery middleware, an access-log middleware, a /healthz liveness
// route, a /metrics route scraping reg (skipped when reg is nil), and
// the file-serving catch-all wrapped with httpsnoop status/byte capture.
// onComplete, when non-nil, is invoked after every file-serving request
// with the captured metrics so the caller can feed a metrics.Recorder.
func (a *Adapter) Mount(reg prometheus.Gatherer, onComplete func(metrics httpsnoop.Metrics, method, path string)) http.Handler {
	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(a.accessLog)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	})
	if reg != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	mux.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(http.HandlerFunc(a.serveHTTP), w, r)
		if onComplete != nil {
			onComplete(m, r.Method, r.URL.Path)
		}
	}))
	return mux
}

// accessLog logs one line per request at debug level once the handler
// chain below it has written a response, tagging it with chi's request ID.
func (a *Adapter) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.logger == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		m := httpsnoop.CaptureMetrics(next, w, r)
		a.logger.Debug("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", m.Code),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (a *Adapter) serveHTTP(w http.ResponseWriter, r *http.Request) {
	resp, err := a.proc.Process(r.Context(), r.Method, r.URL.EscapedPath(), r.Header)
	if err != nil {
		a.writeError(w, err)
		return
	}

	for key, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(resp.StatusCode)

	if resp.Body == nil {
		return
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		if a.logger != nil {
			a.logger.Debug("producer disconnected", zap.Error(err), zap.String("path", r.URL.Path))
		}
	}
}

func (a *Adapter) writeError(w http.ResponseWriter, err error) {
	status := httperr.StatusOf(err)
	for key, value := range httperr.HeadersOf(err) {
		w.Header().Set(key, value)
	}

	body := fmt.Sprintf("<html><body><h1>%d %s</h1></body></html>", status, http.StatusText(status))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body)

	if a.logger != nil {
		var asHTTPErr *httperr.Error
		if errors.As(err, &asHTTPErr) && status >= 500 {
			a.logger.Error("request failed", zap.Error(err), zap.Int("status", status))
		}
	}
}
