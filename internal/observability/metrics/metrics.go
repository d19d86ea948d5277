package metrics

import "github.com/prometheus/client_golang/prometheus"

// ToolCallMetrics exposes counters/histograms for voice tool-call flows.
type ToolCallMetrics struct {
	callsTotal  *prometheus.CounterVec
	callLatency *prometheus.HistogramVec
}

func NewToolCallMetrics(reg prometheus.Registerer) *ToolCallMetrics {
	m := &ToolCallMetrics{
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careconnect",
			Subsystem: "voice",
			Name:      "tool_calls_total",
			Help:      "Total voice tool calls by tool and outcome kind",
		}, []string{"tool", "outcome"}),
		callLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "careconnect",
			Subsystem: "voice",
			Name:      "tool_call_latency_seconds",
			Help:      "Latency of voice tool-call processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.callsTotal, m.callLatency)
	return m
}

func (m *ToolCallMetrics) ObserveCall(tool, outcomeKind string) {
	if m == nil {
		return
	}
	m.callsTotal.WithLabelValues(tool, outcomeKind).Inc()
}

func (m *ToolCallMetrics) ObserveLatency(tool string, seconds float64) {
	if m == nil {
		return
	}
	m.callLatency.WithLabelValues(tool).Observe(seconds)
}
