package rest

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	requests, err := register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "labelkit",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Number of requests to the annotation server, by status code. code is \"error\" when no responses.",
		},
		[]string{"method", "resource", "code"},
	))
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "labelkit",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Time to get response headers from the annotation server.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "resource"},
	))
	if err != nil {
		return nil, err
	}

	return &metrics{requests: requests, duration: duration}, nil
}

// register c, or returns the same collector registered already.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	are := prometheus.AlreadyRegisteredError{}
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}

func (m *metrics) observe(method string, resource string, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, resource, code).Inc()
	m.duration.WithLabelValues(method, resource).Observe(elapsed.Seconds())
}
