package rideapi

import "github.com/prometheus/client_golang/prometheus"

// Metrics 後端呼叫與 token 換發計數。
type Metrics struct {
	requests *prometheus.CounterVec
	renewals *prometheus.CounterVec
}

// NewMetrics 建立並註冊指標；reg 為 nil 時只建立不註冊。
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ride_client",
			Name:      "api_requests_total",
			Help:      "Backend API calls by operation and status code.",
		}, []string{"op", "code"}),
		renewals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ride_client",
			Name:      "token_renewals_total",
			Help:      "Access token renewal attempts by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.renewals)
	}
	return m
}

func (m *Metrics) request(op, code string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op, code).Inc()
}

func (m *Metrics) renewal(outcome string) {
	if m == nil {
		return
	}
	m.renewals.WithLabelValues(outcome).Inc()
}
