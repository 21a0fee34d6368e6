package syncqueue

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dmitrymomot/syncqueue/pkg/mutation"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
	resultEvicted = "evicted"
)

// metrics is nil-safe: every method is a no-op on a nil receiver.
type metrics struct {
	processed *prometheus.CounterVec
	duration  prometheus.Histogram
	pending   prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		processed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "syncqueue",
			Name:      "mutations_processed_total",
			Help:      "Mutations processed by ProcessAll by type and result (success, failure, evicted)",
		}, []string{"type", "result"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "syncqueue",
			Name:      "executor_duration_seconds",
			Help:      "Time spent in the executor per mutation",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		pending: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "syncqueue",
			Name:      "pending_mutations",
			Help:      "Mutations waiting in the active namespace",
		}),
	}
}

func (m *metrics) observe(t mutation.Type, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.processed.WithLabelValues(string(t), result).Inc()
	m.duration.Observe(d.Seconds())
}

func (m *metrics) setPending(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}
