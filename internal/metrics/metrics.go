package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mind-engage/selfcheck/internal/attempt"
	"github.com/mind-engage/selfcheck/internal/controller"
	"github.com/mind-engage/selfcheck/internal/question"
)

const namespace = "selfcheck"

// Metrics owns its registry so several instances can coexist in tests.
type Metrics struct {
	reg *prometheus.Registry

	submissions *prometheus.CounterVec
	resolved    *prometheus.CounterVec
	pages       prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Submissions evaluated, by answer kind and outcome",
		}, []string{"kind", "outcome"}),
		resolved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_resolved_total",
			Help:      "Question instances that reached a terminal status",
		}, []string{"kind", "status"}),
		pages: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pages_mounted",
			Help:      "Pages currently mounted",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests received",
		}, []string{"method", "path", "status"}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// Submitted counts one evaluated submission. Only the submit that moved an
// instance into a terminal status counts as resolving it.
func (m *Metrics) Submitted(kind question.Kind, out controller.Outcome, status attempt.Status) {
	m.submissions.WithLabelValues(string(kind), string(out)).Inc()
	if out != controller.InertNoOp && status.Terminal() {
		m.resolved.WithLabelValues(string(kind), string(status)).Inc()
	}
}

func (m *Metrics) PagesMounted(n int) { m.pages.Set(float64(n)) }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Middleware records request counts and latency labelled by the chi route
// pattern, so page ids do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		path := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				path = p
			}
		}
		labels := []string{r.Method, path, strconv.Itoa(status)}
		m.httpRequests.WithLabelValues(labels...).Inc()
		m.httpLatency.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	})
}
