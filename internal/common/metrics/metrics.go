package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "miniurban"

// Metrics holds the service collectors on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	initData   *prometheus.CounterVec
	sessions   *prometheus.CounterVec
	handshakes *prometheus.CounterVec
	guard      *prometheus.CounterVec
	requests   *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		initData: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "initdata",
			Name:      "verifications_total",
			Help:      "Init data verifications by result.",
		}, []string{"result"}),
		sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admin",
			Name:      "sessions_issued_total",
			Help:      "Admin session tokens issued by login kind.",
		}, []string{"kind"}),
		handshakes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admin",
			Name:      "telegram_handshake_total",
			Help:      "Telegram login handshake steps by stage and result.",
		}, []string{"stage", "result"}),
		guard: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admin",
			Name:      "guard_decisions_total",
			Help:      "Authorization guard decisions.",
		}, []string{"result"}),
		requests: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) InitDataVerified(result string) {
	if m == nil {
		return
	}
	m.initData.WithLabelValues(result).Inc()
}

func (m *Metrics) SessionIssued(kind string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(kind).Inc()
}

func (m *Metrics) Handshake(stage, result string) {
	if m == nil {
		return
	}
	m.handshakes.WithLabelValues(stage, result).Inc()
}

func (m *Metrics) GuardDecision(result string) {
	if m == nil {
		return
	}
	m.guard.WithLabelValues(result).Inc()
}

// Middleware records request latency labelled by the matched route pattern.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
