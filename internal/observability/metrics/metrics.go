package metrics

import "github.com/prometheus/client_golang/prometheus"

// EngineMetrics exposes counters/histograms for the conversation engine
// and profile detection flows. All methods are nil-safe so wiring metrics
// stays optional.
type EngineMetrics struct {
	detectionsTotal *prometheus.CounterVec
	signalsTotal    *prometheus.CounterVec
	generationTotal *prometheus.CounterVec
	styleSwitches   *prometheus.CounterVec
	turnLatency     *prometheus.HistogramVec
}

func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{
		detectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "discovery",
			Subsystem: "profile",
			Name:      "detections_total",
			Help:      "Total profile detections",
		}, []string{"industry", "role"}),
		signalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "discovery",
			Subsystem: "engine",
			Name:      "signals_total",
			Help:      "Behavioral signals detected per kind",
		}, []string{"kind"}),
		generationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "discovery",
			Subsystem: "engine",
			Name:      "generation_total",
			Help:      "Question generation attempts by outcome",
		}, []string{"status"}),
		styleSwitches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "discovery",
			Subsystem: "engine",
			Name:      "style_switches_total",
			Help:      "Questioning style transitions",
		}, []string{"from", "to"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "discovery",
			Subsystem: "engine",
			Name:      "turn_latency_seconds",
			Help:      "Latency of full conversation turns",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.detectionsTotal, m.signalsTotal, m.generationTotal, m.styleSwitches, m.turnLatency)
	return m
}

func (m *EngineMetrics) ObserveDetection(industry, role string) {
	if m == nil {
		return
	}
	m.detectionsTotal.WithLabelValues(industry, role).Inc()
}

func (m *EngineMetrics) ObserveSignal(kind string) {
	if m == nil {
		return
	}
	m.signalsTotal.WithLabelValues(kind).Inc()
}

func (m *EngineMetrics) ObserveGeneration(status string) {
	if m == nil {
		return
	}
	m.generationTotal.WithLabelValues(status).Inc()
}

func (m *EngineMetrics) ObserveStyleSwitch(from, to string) {
	if m == nil {
		return
	}
	m.styleSwitches.WithLabelValues(from, to).Inc()
}

func (m *EngineMetrics) ObserveTurnLatency(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.turnLatency.WithLabelValues(stage).Observe(seconds)
}
