package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersAndUpdatesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ActiveSessions.Set(2)
	m.RegistrationsTotal.Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var sawActive, sawRegistrations bool
	for _, fam := range families {
		switch fam.GetName() {
		case "pacd_active_sessions":
			sawActive = true
			require.Equal(t, float64(2), fam.Metric[0].GetGauge().GetValue())
		case "pacd_registrations_total":
			sawRegistrations = true
			require.Equal(t, float64(1), fam.Metric[0].GetCounter().GetValue())
		}
	}
	require.True(t, sawActive)
	require.True(t, sawRegistrations)
}
