package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ecosort"

var (
	// HTTPRequestsTotal число HTTP-запросов по методу, маршруту и коду ответа.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, route and status.",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration время обработки HTTP-запроса.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	// ModelRequestsTotal обращения к модели: operation = classify|detect, outcome = success|throttled|failed|mock.
	ModelRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_requests_total",
		Help:      "Vision model requests by operation and outcome.",
	}, []string{"operation", "outcome"})

	// ModelRequestDuration время одного вызова модели.
	ModelRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "model_request_duration_seconds",
		Help:      "Vision model call latency.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
	}, []string{"operation"})

	// QuotaCooldownsTotal сколько раз включалась пауза по квоте.
	QuotaCooldownsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quota_cooldowns_total",
		Help:      "Number of times the model quota cool-down was entered.",
	})

	// ClassificationsTotal классификации по категории.
	ClassificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "classifications_total",
		Help:      "Classified items by category.",
	}, []string{"category"})

	// DetectionsTotal найденные объекты по категории.
	DetectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "detections_total",
		Help:      "Detected objects by category.",
	}, []string{"category"})

	// FramesTotal кадры, прошедшие через обработчик видео.
	FramesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frames_total",
		Help:      "Video frames handled, by whether detection ran.",
	}, []string{"detection"})
)

// CategoryLabel метка категории с ограниченной кардинальностью.
func CategoryLabel(category string) string {
	switch category {
	case "recyclable", "compostable", "landfill", "hazardous", "special":
		return category
	}
	return "unknown"
}
