package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()

	m.CounterRequests.WithLabelValues("GET", "200").Inc()
	m.CounterWeightsRecorded.Inc()
	m.CounterDashboards.WithLabelValues("year").Add(2)
	m.GaugeStreams.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterWeightsRecorded))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterDashboards.WithLabelValues("year")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GaugeStreams))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["vitals_test_server_request"])
	assert.True(t, names["vitals_test_server_weights_recorded"])
	assert.True(t, names["vitals_test_server_dashboards"])
}

func TestNewManagerSeparateRegistries(t *testing.T) {
	// Registering twice against distinct registries must not panic.
	assert.NotPanics(t, func() {
		NewTestManager()
		NewTestManager()
	})
}
