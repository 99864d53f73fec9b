package service

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsOnce          sync.Once
	renderTotal          *prometheus.CounterVec
	widgetFallbacksTotal *prometheus.CounterVec
	renderDuration       *prometheus.HistogramVec
)

func initMetrics() {
	metricsOnce.Do(func() {
		renderTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sellusgenie",
			Subsystem: "storefront",
			Name:      "render_total",
			Help:      "Page renders by mode and outcome",
		}, []string{"mode", "outcome"})

		widgetFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sellusgenie",
			Subsystem: "storefront",
			Name:      "widget_fallbacks_total",
			Help:      "Widgets rendered with a fallback, by reason",
		}, []string{"reason"})

		renderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sellusgenie",
			Subsystem: "storefront",
			Name:      "render_duration_seconds",
			Help:      "Duration of page renders including fetches",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"})
	})
}

// RecordWidgetFallback counts one degraded widget. It is handed to the
// renderer as its fallback observer.
func RecordWidgetFallback(reason string) {
	initMetrics()
	widgetFallbacksTotal.WithLabelValues(reason).Inc()
}
