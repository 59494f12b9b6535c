package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lojasmm/tilebot/internal/estimate"
)

// ChatMetrics exposes counters for the estimate conversation. A nil
// *ChatMetrics is valid and records nothing.
type ChatMetrics struct {
	inputsTotal     *prometheus.CounterVec
	estimatesTotal  prometheus.Counter
	tileCount       prometheus.Histogram
	deliveriesTotal *prometheus.CounterVec
	sessionsActive  prometheus.Gauge
	sessionsEvicted prometheus.Counter
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		inputsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tilebot",
			Subsystem: "chat",
			Name:      "inputs_total",
			Help:      "Visitor inputs by kind and result",
		}, []string{"kind", "result"}),
		estimatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tilebot",
			Subsystem: "chat",
			Name:      "estimates_total",
			Help:      "Estimates produced",
		}),
		tileCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tilebot",
			Subsystem: "chat",
			Name:      "estimate_tile_count",
			Help:      "Tile counts of produced estimates",
			Buckets:   prometheus.LinearBuckets(estimate.MinTiles, 10, 5),
		}),
		deliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tilebot",
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Estimate email delivery attempts by status",
		}, []string{"status"}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tilebot",
			Subsystem: "session",
			Name:      "active",
			Help:      "Conversations currently held in memory",
		}),
		sessionsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tilebot",
			Subsystem: "session",
			Name:      "evicted_total",
			Help:      "Conversations dropped for idleness or capacity",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inputsTotal, m.estimatesTotal, m.tileCount, m.deliveriesTotal, m.sessionsActive, m.sessionsEvicted)
	return m
}

func (m *ChatMetrics) ObserveInput(kind, result string) {
	if m == nil {
		return
	}
	m.inputsTotal.WithLabelValues(kind, result).Inc()
}

func (m *ChatMetrics) ObserveEstimate(r estimate.Result) {
	if m == nil {
		return
	}
	m.estimatesTotal.Inc()
	m.tileCount.Observe(float64(r.TileCount))
}

// ObserveDelivery satisfies notify.DeliveryObserver.
func (m *ChatMetrics) ObserveDelivery(status string) {
	if m == nil {
		return
	}
	m.deliveriesTotal.WithLabelValues(status).Inc()
}

func (m *ChatMetrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsActive.Inc()
}

func (m *ChatMetrics) SessionEvicted() {
	if m == nil {
		return
	}
	m.sessionsActive.Dec()
	m.sessionsEvicted.Inc()
}
