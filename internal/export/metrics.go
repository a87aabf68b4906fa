package export

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ExportsTotal   *prometheus.CounterVec
	ExportDuration *prometheus.HistogramVec
}

var (
	metricsOnce     sync.Once
	metricsInstance *Metrics
)

func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			ExportsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "vectorboard_exports_total",
				Help: "Total number of exports by format and result",
			}, []string{"format", "result"}),
			ExportDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "vectorboard_export_duration_seconds",
				Help:    "Time spent encoding an export",
				Buckets: prometheus.DefBuckets,
			}, []string{"format"}),
		}
	})
	return metricsInstance
}

func (m *Metrics) Observe(format Format, err error, took time.Duration) {
	if m == nil || m.ExportsTotal == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ExportsTotal.WithLabelValues(string(format), result).Inc()
	m.ExportDuration.WithLabelValues(string(format)).Observe(took.Seconds())
}
