package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(rendersTotal, renderDurationMs, artifactBytes)
}

var (
	rendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artifact_renders_total",
			Help: "Artifact renders by success.",
		},
		[]string{"success"},
	)

	renderDurationMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "artifact_render_duration_ms",
			Help:    "Render duration distribution in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
	)

	artifactBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "artifact_size_bytes",
			Help:    "Size distribution of rendered artifacts.",
			Buckets: prometheus.ExponentialBuckets(16*1024, 2, 10),
		},
	)
)

func ObserveRender(success bool, d time.Duration) {
	rendersTotal.WithLabelValues(strconv.FormatBool(success)).Inc()
	renderDurationMs.Observe(float64(d.Milliseconds()))
}

func ObserveArtifactSize(n int) {
	artifactBytes.Observe(float64(n))
}
