package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/mind-engage/selfcheck/internal/attempt"
	"github.com/mind-engage/selfcheck/internal/controller"
	"github.com/mind-engage/selfcheck/internal/question"
)

func TestSubmittedCounts(t *testing.T) {
	m := New()
	m.Submitted(question.NumericTolerance, controller.Missed, attempt.IncorrectRetryable)
	m.Submitted(question.NumericTolerance, controller.Matched, attempt.Correct)
	m.Submitted(question.NumericTolerance, controller.InertNoOp, attempt.Correct)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("numeric", "matched")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("numeric", "inert_noop")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolved.WithLabelValues("numeric", "correct")))

	m.PagesMounted(4)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.pages))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/pages/{pageID}", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	r.Get("/metrics", m.Handler().ServeHTTP)

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pages/"+id, nil))
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/pages/{pageID}", "418")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "selfcheck_http_requests_total"))
}
