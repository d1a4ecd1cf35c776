package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dashboard"

const (
	ResultOK        = "ok"
	ResultStatus    = "status"
	ResultMalformed = "malformed"
	ResultTransport = "transport"
)

var (
	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "CoinGecko requests by endpoint and result.",
		}, []string{"endpoint", "result"})

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Top coins cache lookups by result.",
		}, []string{"result"})

	passes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_passes_total",
			Help:      "Refresh passes by outcome.",
		}, []string{"outcome"})

	passDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_pass_duration_seconds",
			Help:      "Duration of a full refresh pass.",
			Buckets:   prometheus.DefBuckets,
		})
)

func init() {
	prometheus.MustRegister(upstreamRequests, cacheLookups, passes, passDuration)
}

func ObserveUpstream(endpoint, result string) {
	upstreamRequests.WithLabelValues(endpoint, result).Inc()
}

func ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(result).Inc()
}

func ObservePass(outcome string, elapsed time.Duration) {
	passes.WithLabelValues(outcome).Inc()
	passDuration.Observe(elapsed.Seconds())
}
