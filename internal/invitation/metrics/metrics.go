package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the invitation lifecycle.
type Metrics struct {
	InvitationsCreated prometheus.Counter
	Transitions        *prometheus.CounterVec
	RedeemOutcomes     *prometheus.CounterVec
	Notifications      *prometheus.CounterVec
	RedeemDuration     prometheus.Histogram
}

// New creates the invitation metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		InvitationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "familyhub_invitations_created_total",
			Help: "Total number of invitations created",
		}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "familyhub_invitation_transitions_total",
			Help: "Invitation status transitions by target status",
		}, []string{"to"}),
		RedeemOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "familyhub_invitation_redeem_total",
			Help: "Redemption attempts by outcome",
		}, []string{"outcome"}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "familyhub_invitation_notifications_total",
			Help: "Invitation email deliveries by result (sent, duplicate, failed, dropped)",
		}, []string{"result"}),
		RedeemDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "familyhub_invitation_redeem_duration_seconds",
			Help:    "Duration of invitation redemption including the transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

func (m *Metrics) IncrementCreated() {
	m.InvitationsCreated.Inc()
}

func (m *Metrics) IncrementTransition(to string) {
	m.Transitions.WithLabelValues(to).Inc()
}

// IncrementRedeem records how a redemption ended: accepted, already_member or
// a rejection reason.
func (m *Metrics) IncrementRedeem(outcome string) {
	m.RedeemOutcomes.WithLabelValues(outcome).Inc()
}

// IncrementNotification satisfies notify.ResultRecorder.
func (m *Metrics) IncrementNotification(result string) {
	m.Notifications.WithLabelValues(result).Inc()
}

// ObserveRedeem records the duration of a redemption.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRedeem(start time.Time) {
	m.RedeemDuration.Observe(time.Since(start).Seconds())
}
