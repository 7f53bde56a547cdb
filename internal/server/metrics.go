package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "funding_dashboard"

// Metrics holds the server's Prometheus collectors.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	BuildDuration   prometheus.Histogram
	MatchedRecords  prometheus.Histogram
	DatasetRecords  prometheus.Gauge
	DatasetExcluded prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "build_duration_seconds",
			Help:      "Time to filter the dataset and compute every view.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		MatchedRecords: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "matched_records",
			Help:      "Records matching each requested selection.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "dataset_records",
			Help:      "Usable records in the loaded dataset.",
		}),
		DatasetExcluded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "dataset_excluded_rows",
			Help:      "Source rows excluded while loading the dataset.",
		}),
	}

	reg.MustRegister(
		m.Requests,
		m.RequestDuration,
		m.BuildDuration,
		m.MatchedRecords,
		m.DatasetRecords,
		m.DatasetExcluded,
	)
	return m
}

func (m *Metrics) observeRequest(route string, status int, d time.Duration) {
	if status == 0 {
		status = 200
	}
	m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) observeBuild(matched int, d time.Duration) {
	m.BuildDuration.Observe(d.Seconds())
	m.MatchedRecords.Observe(float64(matched))
}
