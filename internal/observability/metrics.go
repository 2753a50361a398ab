// Package observability provides metrics and tracing instrumentation.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verseflow_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "verseflow_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FeedPagesServed counts feed pages served, labelled by viewer kind.
	FeedPagesServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verseflow_feed_pages_served_total",
		Help: "Total number of feed pages served",
	}, []string{"viewer"})

	// EngagementToggles counts like/save/follow toggle operations by kind and outcome.
	EngagementToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verseflow_engagement_toggles_total",
		Help: "Total number of engagement toggle operations",
	}, []string{"kind", "outcome"})

	// CommentTreeSize records the number of comments assembled per tree request.
	CommentTreeSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "verseflow_comment_tree_size",
		Help:    "Number of comments returned per comment tree request",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	// CounterDriftRepaired counts denormalized counters corrected by the reconciliation job.
	CounterDriftRepaired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verseflow_counter_drift_repaired_total",
		Help: "Total number of denormalized counter rows repaired by reconciliation",
	}, []string{"counter"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}
