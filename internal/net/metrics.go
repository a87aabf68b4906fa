package net

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ActiveSessions prometheus.Gauge
	RequestsTotal  *prometheus.CounterVec
}

var (
	metricsOnce     sync.Once
	metricsInstance *Metrics
)

func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "vectorboard_browser_sessions_active",
				Help: "Current number of connected browser editors",
			}),
			RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "vectorboard_browser_requests_total",
				Help: "Total number of websocket requests by method and result",
			}, []string{"method", "result"}),
		}
	})
	return metricsInstance
}

func (m *Metrics) SessionOpened() {
	if m == nil || m.ActiveSessions == nil {
		return
	}
	m.ActiveSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil || m.ActiveSessions == nil {
		return
	}
	m.ActiveSessions.Dec()
}

func (m *Metrics) RecordRequest(method string, err error) {
	if m == nil || m.RequestsTotal == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.RequestsTotal.WithLabelValues(method, result).Inc()
}
