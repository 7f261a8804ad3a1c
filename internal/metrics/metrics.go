package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "toko_pos"

// Metrics is safe to use through a nil pointer; every recorder is then a no-op.
type Metrics struct {
	registry       *prometheus.Registry
	httpReqCnt     *prometheus.CounterVec
	httpDur        *prometheus.HistogramVec
	checkouts      *prometheus.CounterVec
	commitDur      prometheus.Histogram
	stockConflicts prometheus.Counter
	sessionDenials *prometheus.CounterVec
}

func New() *Metrics {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Buckets: prometheus.DefBuckets}, []string{"method", "route"})
	r.MustRegister(httpReqCnt, httpDur)

	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "checkouts_total", Help: "Checkout attempts by outcome."}, []string{"outcome"})
	commitDur := prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "checkout_commit_duration_seconds", Buckets: prometheus.DefBuckets})
	stockConflicts := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "stock_conflicts_total", Help: "Commits rejected by the stock guard."})
	sessionDenials := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "session_denials_total", Help: "Requests refused by the session gate, by reason."}, []string{"reason"})
	r.MustRegister(checkouts, commitDur, stockConflicts, sessionDenials)

	return &Metrics{
		registry:       r,
		httpReqCnt:     httpReqCnt,
		httpDur:        httpDur,
		checkouts:      checkouts,
		commitDur:      commitDur,
		stockConflicts: stockConflicts,
		sessionDenials: sessionDenials,
	}
}

// CheckoutDone records one finished commit attempt. outcome is "committed" or
// a short failure reason.
func (m *Metrics) CheckoutDone(outcome string, since time.Time) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(outcome).Inc()
	m.commitDur.Observe(time.Since(since).Seconds())
}

func (m *Metrics) StockConflict() {
	if m == nil {
		return
	}
	m.stockConflicts.Inc()
}

func (m *Metrics) SessionDenied(reason string) {
	if m == nil {
		return
	}
	m.sessionDenials.WithLabelValues(reason).Inc()
}

// Middleware counts requests per matched route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		m.httpReqCnt.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.httpDur.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
