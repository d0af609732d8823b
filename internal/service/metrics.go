package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	postsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posts_created_total",
			Help: "Posts committed, by board and kind (thread/reply)",
		},
		[]string{"board", "kind"},
	)

	submissionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_submission_failures_total",
			Help: "Submissions aborted inside the transaction",
		},
		[]string{"board"},
	)

	adventuresConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "adventures_consumed_total",
			Help: "Adventure tokens expended by submissions",
		},
	)

	threadCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thread_cache_hits_total",
			Help: "Thread view cache hits",
		},
	)

	threadCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thread_cache_misses_total",
			Help: "Thread view cache misses",
		},
	)
)
