package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementFamilyCreated()
	m.IncrementMembershipChange("added")
	m.IncrementMembershipChange("added")
	m.IncrementAccessDenied("remove_member", "not_creator")
	m.ObserveMutation("add_member", time.Now())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FamiliesCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.MembershipChanges.WithLabelValues("added")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccessDenied.WithLabelValues("remove_member", "not_creator")))

	count, err := testutil.GatherAndCount(reg, "familyhub_family_mutation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewPerRegistry(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
