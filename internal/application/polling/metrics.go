package polling

import "github.com/prometheus/client_golang/prometheus"

// Metrics 輪詢 tick、略過與失敗計數，以 poller 名稱區分。
type Metrics struct {
	ticks    *prometheus.CounterVec
	skipped  *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewMetrics 建立並註冊指標；reg 為 nil 時只建立不註冊。
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ride_client",
			Name:      "poll_ticks_total",
			Help:      "Poll ticks observed.",
		}, []string{"poller"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ride_client",
			Name:      "poll_skipped_total",
			Help:      "Ticks skipped because a poll was still in flight.",
		}, []string{"poller"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ride_client",
			Name:      "poll_failures_total",
			Help:      "Polls that failed and kept the previous value.",
		}, []string{"poller"}),
	}
	if reg != nil {
		reg.MustRegister(m.ticks, m.skipped, m.failures)
	}
	return m
}

func (m *Metrics) tick(name string) {
	if m != nil {
		m.ticks.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) skip(name string) {
	if m != nil {
		m.skipped.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) failure(name string) {
	if m != nil {
		m.failures.WithLabelValues(name).Inc()
	}
}
