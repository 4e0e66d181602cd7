package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(generationCallsTotal, generationLatencyMs, generationPromptTokens) }

var (
	generationCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_calls_total",
			Help: "Content generation calls by provider and success.",
		},
		[]string{"provider", "success"},
	)

	generationLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_latency_ms",
			Help:    "Generation call latency distribution in milliseconds.",
			Buckets: []float64{250, 500, 1000, 2500, 5000, 10000, 30000, 60000, 120000},
		},
		[]string{"provider"},
	)

	generationPromptTokens = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_prompt_tokens",
			Help:    "Prompt token counts submitted to the generator.",
			Buckets: []float64{128, 256, 512, 1024, 2048, 4096, 8192},
		},
		[]string{"provider"},
	)
)

func ObserveGeneration(provider string, success bool, d time.Duration) {
	generationCallsTotal.WithLabelValues(norm(provider), strconv.FormatBool(success)).Inc()
	generationLatencyMs.WithLabelValues(norm(provider)).Observe(float64(d.Milliseconds()))
}

func ObservePromptTokens(provider string, tokens int) {
	generationPromptTokens.WithLabelValues(norm(provider)).Observe(float64(tokens))
}
