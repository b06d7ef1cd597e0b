package metrics

import (
	"time"

	pkgerrors "github.com/angelmondragon/agrimarket/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// OutcomeOK labels writes that committed.
const OutcomeOK = "ok"

// WriteMetrics records the outcome of every marketplace write.
type WriteMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewWriteMetrics registers the write metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewWriteMetrics(reg prometheus.Registerer) *WriteMetrics {
	if reg == nil {
		return &WriteMetrics{}
	}
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agrimarket_writes_total",
		Help: "Marketplace writes by entity, operation and outcome code.",
	}, []string{"entity", "op", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agrimarket_write_duration_seconds",
		Help:    "Duration of marketplace writes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"entity", "op"})
	reg.MustRegister(total, duration)
	return &WriteMetrics{total: total, duration: duration}
}

// Observe counts one write. err is reduced to its error code; nil counts as OutcomeOK.
func (m *WriteMetrics) Observe(entity, op string, err error, took time.Duration) {
	if m == nil || m.total == nil {
		return
	}
	m.total.WithLabelValues(normalizeLabel(entity), normalizeLabel(op), Outcome(err)).Inc()
	if took > 0 {
		m.duration.WithLabelValues(normalizeLabel(entity), normalizeLabel(op)).Observe(took.Seconds())
	}
}

// Outcome maps an error onto the label value used by Observe.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	return string(pkgerrors.CodeOf(err))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
