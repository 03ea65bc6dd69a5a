package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	calculationsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "effort_service",
		Subsystem: "calculator",
		Name:      "calculations_total",
		Help:      "Number of effort calculations performed, by recommendation mode.",
	}, []string{"mode"})
	servingFallbackCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "effort_service",
		Subsystem: "quantity",
		Name:      "serving_fallbacks_total",
		Help:      "Number of unparseable serving descriptions replaced by the 100 g default.",
	})
	catalogUpdateGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "effort_service",
		Subsystem: "catalog",
		Name:      "last_update_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity catalog update applied.",
	})
)

func init() {
	prometheus.MustRegister(calculationsCounter, servingFallbackCounter, catalogUpdateGauge)
}

// RecordCalculation counts one completed effort calculation for a mode.
func RecordCalculation(mode string) {
	calculationsCounter.WithLabelValues(mode).Inc()
}

// RecordServingFallback counts one 100 g default substitution.
func RecordServingFallback() {
	servingFallbackCounter.Inc()
}

// RecordCatalogUpdate updates the catalog watermark gauge.
func RecordCatalogUpdate(ts time.Time) {
	if ts.IsZero() {
		return
	}
	catalogUpdateGauge.Set(float64(ts.Unix()))
}
