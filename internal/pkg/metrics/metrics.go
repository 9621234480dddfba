// Package metrics exposes tracking and HTTP observations to Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tracking"

// Recorder implements ports.TrackingMetrics.
type Recorder struct {
	transitionsApplied  *prometheus.CounterVec
	transitionsRejected *prometheus.CounterVec
	estimatesServed     *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

// NewRecorder registers every collector on reg. Registering twice on the same
// registry panics, as with any prometheus.MustRegister call.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		transitionsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_applied_total",
			Help:      "Committed order transitions by category and target stage.",
		}, []string{"category", "stage"}),
		transitionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_rejected_total",
			Help:      "Failed order mutations by error kind.",
		}, []string{"kind"}),
		estimatesServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "estimates_served_total",
			Help:      "Tracking snapshots served, split by whether an ETA was available.",
		}, []string{"available"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		r.transitionsApplied,
		r.transitionsRejected,
		r.estimatesServed,
		r.httpRequests,
		r.httpDuration,
	)
	return r
}

func (r *Recorder) TransitionApplied(categoryID, target string) {
	r.transitionsApplied.WithLabelValues(categoryID, target).Inc()
}

func (r *Recorder) TransitionRejected(kind string) {
	r.transitionsRejected.WithLabelValues(kind).Inc()
}

func (r *Recorder) EstimateServed(available bool) {
	r.estimatesServed.WithLabelValues(strconv.FormatBool(available)).Inc()
}

// Middleware records every request under its route template, so /orders/:id/track
// stays one series regardless of the id.
func (r *Recorder) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			r.httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Response().Status)).Inc()
			r.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
