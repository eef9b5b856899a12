// Package metrics exposes Prometheus instruments for the membership
// workflow, grading, checkout and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quizmart"

// Metrics bundles the instruments. A nil *Metrics is valid and records
// nothing, so services can be constructed without one in tests.
type Metrics struct {
	reg *prometheus.Registry

	membershipTransitions *prometheus.CounterVec
	quizSubmissions       *prometheus.CounterVec
	quizScore             prometheus.Histogram
	attemptArchive        *prometheus.CounterVec
	ordersCreated         prometheus.Counter
	orderRevenue          prometheus.Counter
	exports               *prometheus.CounterVec
	httpDuration          *prometheus.HistogramVec
}

// New registers all instruments on a fresh registry, along with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		reg: reg,
		membershipTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "membership",
			Name:      "transitions_total",
			Help:      "Membership state transitions by operation.",
		}, []string{"transition"}),
		quizSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quiz",
			Name:      "submissions_total",
			Help:      "Graded quiz submissions by outcome.",
		}, []string{"outcome"}),
		quizScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "quiz",
			Name:      "score_ratio",
			Help:      "Fraction of questions answered correctly per submission.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		attemptArchive: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quiz",
			Name:      "attempt_archive_total",
			Help:      "Attempt snapshots written to the cache by result.",
		}, []string{"result"}),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "orders_created_total",
			Help:      "Orders created from carts.",
		}),
		orderRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "order_revenue_total",
			Help:      "Sum of order totals at creation time.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "requests_total",
			Help:      "Attempt exports by format.",
		}, []string{"format"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.membershipTransitions,
		m.quizSubmissions,
		m.quizScore,
		m.attemptArchive,
		m.ordersCreated,
		m.orderRevenue,
		m.exports,
		m.httpDuration,
	)
	return m
}

// Registry returns the underlying registry. Tests gather from it.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// MembershipTransition counts one applied membership operation.
func (m *Metrics) MembershipTransition(name string) {
	if m == nil {
		return
	}
	m.membershipTransitions.WithLabelValues(name).Inc()
}

// QuizGraded records a graded submission.
func (m *Metrics) QuizGraded(correct, total int) {
	if m == nil {
		return
	}
	m.quizSubmissions.WithLabelValues("graded").Inc()
	if total > 0 {
		m.quizScore.Observe(float64(correct) / float64(total))
	}
}

// QuizRejected counts a submission refused before grading.
func (m *Metrics) QuizRejected() {
	if m == nil {
		return
	}
	m.quizSubmissions.WithLabelValues("rejected").Inc()
}

// AttemptArchived counts an attempt snapshot write; ok=false for a failed write.
func (m *Metrics) AttemptArchived(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.attemptArchive.WithLabelValues(result).Inc()
}

// OrderCreated records a converted cart.
func (m *Metrics) OrderCreated(total float64) {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
	m.orderRevenue.Add(total)
}

// Exported counts one export download.
func (m *Metrics) Exported(format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Instrument is chi middleware that observes request latency labelled by
// the matched route pattern, keeping label cardinality bounded.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
