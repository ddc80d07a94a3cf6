package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the family module.
// Tracks roster mutations, guard denials and critical path durations.
type Metrics struct {
	FamiliesCreated   prometheus.Counter
	MembershipChanges *prometheus.CounterVec
	AccessDenied      *prometheus.CounterVec
	MutationDuration  *prometheus.HistogramVec
}

// New creates the family metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FamiliesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "familyhub_families_created_total",
			Help: "Total number of families created",
		}),
		MembershipChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "familyhub_membership_changes_total",
			Help: "Roster mutations by kind (added, removed, role_changed)",
		}, []string{"kind"}),
		AccessDenied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "familyhub_family_access_denied_total",
			Help: "Membership guard denials by operation and reason",
		}, []string{"operation", "reason"}),
		MutationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "familyhub_family_mutation_duration_seconds",
			Help:    "Duration of family aggregate writes, including lock wait",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementFamilyCreated() {
	m.FamiliesCreated.Inc()
}

// IncrementMembershipChange records a committed roster change.
func (m *Metrics) IncrementMembershipChange(kind string) {
	m.MembershipChanges.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementAccessDenied(operation, reason string) {
	m.AccessDenied.WithLabelValues(operation, reason).Inc()
}

// ObserveMutation records the duration of a family write.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveMutation(operation string, start time.Time) {
	m.MutationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
