package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Fetch outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// FetchCollector records upstream data-source fetches.
type FetchCollector struct {
	Requests  *prometheus.CounterVec
	Durations *prometheus.HistogramVec
}

// NewFetchCollector registers fetch metrics against reg, defaulting to the
// global registry when nil.
func NewFetchCollector(reg prometheus.Registerer) (*FetchCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "floodsim_fetch_requests_total",
		Help: "Upstream fetches, labeled by source and outcome.",
	}, []string{"source", "outcome"}), "floodsim_fetch_requests_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "floodsim_fetch_duration_seconds",
		Help:    "Upstream fetch latency in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"source"}), "floodsim_fetch_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &FetchCollector{
		Requests:  requests,
		Durations: durations,
	}, nil
}

// ObserveFetch records one finished fetch. Safe on a nil collector.
func (c *FetchCollector) ObserveFetch(source string, d time.Duration, err error) {
	if c == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	c.Requests.WithLabelValues(source, outcome).Inc()
	c.Durations.WithLabelValues(source).Observe(d.Seconds())
}
