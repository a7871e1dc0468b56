package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the restyle pipeline. Registered once at package
// init; exposed on /metrics.
var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restyle",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"route", "status"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restyle",
			Name:      "uploads_total",
			Help:      "Total original-image uploads",
		},
		[]string{"status"},
	)

	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restyle",
			Name:      "generations_total",
			Help:      "Total generation attempts",
		},
		[]string{"status"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "restyle",
			Name:      "generation_duration_seconds",
			Help:      "End-to-end generation request duration in seconds",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 90},
		},
	)
)
