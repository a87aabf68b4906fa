package editor

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"VectorBoard/internal/state"
)

type Metrics struct {
	ActionsTotal *prometheus.CounterVec
	UndoTotal    *prometheus.CounterVec
}

var (
	metricsOnce     sync.Once
	metricsInstance *Metrics
)

// NewMetrics returns the process-wide editor metrics, registering them on
// first use.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			ActionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "vectorboard_actions_recorded_total",
				Help: "Total number of edits recorded into action history",
			}, []string{"kind", "field"}),
			UndoTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "vectorboard_history_steps_total",
				Help: "Total number of undo and redo steps applied",
			}, []string{"direction", "policy"}),
		}
	})
	return metricsInstance
}

func (m *Metrics) RecordAction(a state.Action) {
	if m == nil || m.ActionsTotal == nil {
		return
	}
	m.ActionsTotal.WithLabelValues(string(a.Kind), a.Change.Field()).Inc()
}

func (m *Metrics) RecordStep(direction string, policy UndoPolicy) {
	if m == nil || m.UndoTotal == nil {
		return
	}
	m.UndoTotal.WithLabelValues(direction, string(policy)).Inc()
}
