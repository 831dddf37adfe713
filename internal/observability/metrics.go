package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesPostedTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "cabshare", Name: "rides_posted_total", Help: "Total rides posted"})

	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cabshare", Name: "searches_total", Help: "Total ride searches by mode"},
		[]string{"mode"},
	)
	SearchLatency = promauto.NewHistogram(prometheus.HistogramOpts{Namespace: "cabshare", Name: "search_latency_seconds", Help: "Ride search latency seconds"})

	DistanceLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cabshare", Name: "distance_lookups_total", Help: "Distance computations by outcome"},
		[]string{"outcome"},
	)

	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cabshare", Name: "provider_requests_total", Help: "External provider requests by outcome"},
		[]string{"provider", "outcome"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cabshare", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cabshare",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
