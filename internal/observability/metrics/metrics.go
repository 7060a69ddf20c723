package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the booking workflow.
type BookingMetrics struct {
	submissionsTotal   *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	eventsTotal        *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carepulse",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Total appointment form submissions",
		}, []string{"action", "outcome"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carepulse",
			Subsystem: "booking",
			Name:      "notifications_total",
			Help:      "Total notification dispatch attempts",
		}, []string{"channel", "status"}),
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carepulse",
			Subsystem: "booking",
			Name:      "appointment_events_total",
			Help:      "Total appointment change events published/consumed",
		}, []string{"stage", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.notificationsTotal, m.eventsTotal)
	return m
}

func (m *BookingMetrics) ObserveSubmission(action, outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(action, outcome).Inc()
}

func (m *BookingMetrics) ObserveNotification(channel, status string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(channel, status).Inc()
}

func (m *BookingMetrics) ObserveEvent(stage, status string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(stage, status).Inc()
}
