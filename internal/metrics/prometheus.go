package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "curesight_request_duration_seconds",
			Help:    "Backend request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curesight_request_total",
			Help: "Total backend requests issued",
		},
		[]string{"endpoint", "outcome"},
	)

	SubmissionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curesight_submission_total",
			Help: "Total patient submissions",
		},
		[]string{"modality", "outcome"},
	)

	StaleResponsesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "curesight_stale_responses_dropped_total",
			Help: "Responses discarded because a newer submission superseded them",
		},
	)

	SpeechCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curesight_speech_cache_hits_total",
			Help: "Synthesized audio cache hits",
		},
		[]string{"layer"},
	)

	SpeechCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "curesight_speech_cache_misses_total",
			Help: "Synthesized audio cache misses",
		},
	)

	SpeechCacheEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "curesight_speech_cache_evictions_total",
			Help: "Synthesized audio resources released by eviction",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(RequestTotal)
	prometheus.MustRegister(SubmissionTotal)
	prometheus.MustRegister(StaleResponsesDropped)
	prometheus.MustRegister(SpeechCacheHits)
	prometheus.MustRegister(SpeechCacheMisses)
	prometheus.MustRegister(SpeechCacheEvictions)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
