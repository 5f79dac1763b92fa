package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// AnalysesTotal counts analysis calls by outcome
	// (ok, fallback, validation, configuration, transport, error).
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "buildingrisk",
		Subsystem: "analyzer",
		Name:      "analyses_total",
		Help:      "Total number of building risk analyses, labeled by result.",
	}, []string{"result"})

	// AnalysisDurationSeconds is end-to-end time per analysis call, including
	// the hosted model round-trip.
	AnalysisDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "buildingrisk",
		Subsystem: "analyzer",
		Name:      "analysis_duration_seconds",
		Help:      "End-to-end time to analyze one image set (build + model call + normalize).",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
	}, []string{"result"})

	// ParseFallbackTotal counts model replies that could not be parsed and
	// degraded into a fallback report.
	ParseFallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "buildingrisk",
		Subsystem: "analyzer",
		Name:      "parse_fallback_total",
		Help:      "Total number of model replies absorbed into fallback reports.",
	})

	// ImagesPerRequest observes how many images each analysis carried.
	ImagesPerRequest = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "buildingrisk",
		Subsystem: "analyzer",
		Name:      "images_per_request",
		Help:      "Number of images attached to each analysis request.",
		Buckets:   []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	})

	// PublishErrorTotal counts failed report publishes to RabbitMQ.
	PublishErrorTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "buildingrisk",
		Subsystem: "analyzer",
		Name:      "publish_error_total",
		Help:      "Total number of failed report publishes to the broker.",
	})
)

// Register registers analyzer metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			AnalysesTotal,
			AnalysisDurationSeconds,
			ParseFallbackTotal,
			ImagesPerRequest,
			PublishErrorTotal,
		)
	})
}
