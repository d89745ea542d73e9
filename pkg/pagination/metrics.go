package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for paginated enumerations.
var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "domains_pages_fetched_total",
		Help: "Total pages fetched by list operation",
	}, []string{"operation"})

	itemsEmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "domains_items_emitted_total",
		Help: "Total items delivered to sinks by list operation",
	}, []string{"operation"})

	paginationFaultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "domains_pagination_faults_total",
		Help: "Total enumerations terminated by a page fault",
	}, []string{"operation"})

	paginationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "domains_pagination_duration_seconds",
		Help:    "Duration of complete enumerations by list operation",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"operation"})
)
