package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dlp_submissions_total",
		Help: "The total number of record submissions by outcome",
	}, []string{"outcome"})

	Verdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dlp_verdicts_total",
		Help: "The total number of interception verdicts by result",
	}, []string{"verdict"})

	PolicyFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dlp_policy_fetch_total",
		Help: "The total number of policy fetches by outcome",
	}, []string{"outcome"})

	SubmissionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dlp_submission_duration_seconds",
		Help:    "Duration of record submissions to the policy service",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
	})

	MediaCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dlp_media_cache_total",
		Help: "Media byte lookups by cache result",
	}, []string{"result"})
)

// Label values for the Verdicts counter.
const (
	VerdictBlock = "block"
	VerdictAllow = "allow"
)

// Label values for the PolicyFetches counter.
const (
	FetchOK       = "ok"
	FetchFallback = "fallback"
)

// Label values for the MediaCacheHits counter.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)
