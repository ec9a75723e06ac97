package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters/histograms for the dashboard backend.
type Metrics struct {
	upstreamTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	degradedTotal   *prometheus.CounterVec
	realtimeClients prometheus.Gauge
	realtimeRelayed *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "courtdash",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total requests sent to the booking backend",
		}, []string{"operation", "status"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "courtdash",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Latency of booking backend requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		degradedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "courtdash",
			Subsystem: "dashboard",
			Name:      "degraded_total",
			Help:      "Dashboard responses served empty because the backend fetch failed",
		}, []string{"view"}),
		realtimeClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "courtdash",
			Subsystem: "realtime",
			Name:      "connected_clients",
			Help:      "Dashboard websocket connections currently open",
		}),
		realtimeRelayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "courtdash",
			Subsystem: "realtime",
			Name:      "events_relayed_total",
			Help:      "Booking events pushed to dashboards",
		}, []string{"event_type"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.upstreamTotal, m.upstreamLatency, m.degradedTotal, m.realtimeClients, m.realtimeRelayed)
	return m
}

func (m *Metrics) ObserveUpstream(operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.upstreamTotal.WithLabelValues(operation, status).Inc()
	m.upstreamLatency.WithLabelValues(operation).Observe(seconds)
}

func (m *Metrics) ObserveDegraded(view string) {
	if m == nil {
		return
	}
	m.degradedTotal.WithLabelValues(view).Inc()
}

func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.realtimeClients.Inc()
}

func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.realtimeClients.Dec()
}

func (m *Metrics) ObserveRelayed(eventType string) {
	if m == nil {
		return
	}
	m.realtimeRelayed.WithLabelValues(eventType).Inc()
}
