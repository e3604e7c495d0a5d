// Package metrics exposes request and site activity counters for Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so each server (and each test) gets its own.
type Metrics struct {
	reg *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	Registrations prometheus.Counter
	Logins        *prometheus.CounterVec
	Posts         prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		Registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blogz_registrations_total",
			Help: "Accounts created",
		}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogz_logins_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		Posts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blogz_posts_total",
			Help: "Blog posts created",
		}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.duration, m.Registrations, m.Logins, m.Posts,
	)
	return m
}

// Middleware records count and latency per route pattern. Unmatched paths
// share one label to keep cardinality bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		timer := prometheus.NewTimer(m.duration.WithLabelValues(c.Request.Method, path))
		c.Next()
		timer.ObserveDuration()
		m.requests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
