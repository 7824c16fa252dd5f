package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts requests by route.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates Metrics and registers them to reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "labelkitd",
				Name:      "http_requests_total",
				Help:      "Number of handled requests.",
			},
			[]string{"method", "route", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "labelkitd",
				Name:      "http_request_duration_seconds",
				Help:      "Time to handle requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Middleware observes requests.
//
// Routes are labeled by their patterns (like "/api/data/labels/classification/:id/"),
// not by actual paths.
func (m *Metrics) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		begin := time.Now()
		err := next(c)
		elapsed := time.Since(begin)

		code := c.Response().Status
		if herr := new(echo.HTTPError); errors.As(err, &herr) {
			code = herr.Code
		} else if err != nil {
			code = http.StatusInternalServerError
		}

		route := c.Path()
		if route == "" {
			route = "(unknown)"
		}
		m.requests.WithLabelValues(c.Request().Method, route, strconv.Itoa(code)).Inc()
		m.duration.WithLabelValues(c.Request().Method, route).Observe(elapsed.Seconds())
		return err
	}
}
