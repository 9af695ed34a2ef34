package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 笔记服务的 Prometheus 指标
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	collection prometheus.Gauge
	images     *prometheus.CounterVec
	sessions   *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. A nil reg leaves them
// unregistered, which tests use to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pin_notes",
			Name:      "operations_total",
			Help:      "Note operations by result.",
		}, []string{"operation", "result"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pin_notes",
			Name:      "operation_duration_seconds",
			Help:      "Note operation latency including remote calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		collection: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "pin_notes",
			Name:      "collection_size",
			Help:      "Notes in the published collection.",
		}),
		images: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pin_notes",
			Name:      "image_resolutions_total",
			Help:      "Image URL resolutions by result.",
		}, []string{"result"}),
		sessions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pin_notes",
			Name:      "sign_ins_total",
			Help:      "Sign in attempts by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) observe(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(operation, result).Inc()
	m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) image(result string) {
	if m != nil {
		m.images.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) size(n int) {
	if m != nil {
		m.collection.Set(float64(n))
	}
}

func (m *Metrics) signIn(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.sessions.WithLabelValues("ok").Inc()
	} else {
		m.sessions.WithLabelValues("rejected").Inc()
	}
}
