package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.MessageSent()
	m.MessageSent()
	m.SendFailed()
	m.Applied("damage", 3)
	m.Applied("damage", 0)
	m.Reloaded("reload")
	m.Propagated(4)
	m.SetGeneration(7)

	values := gather(t, m)
	assert.Equal(t, 2.0, values["unitbalance_sync_messages_sent_total"])
	assert.Equal(t, 1.0, values["unitbalance_sync_send_failures_total"])
	assert.Equal(t, 3.0, values["unitbalance_apply_overrides_total"])
	assert.Equal(t, 1.0, values["unitbalance_reloads_total"])
	assert.Equal(t, 4.0, values["unitbalance_propagated_instances_total"])
	assert.Equal(t, 7.0, values["unitbalance_generation"])
}

// gather sums every sample of each metric family.
func gather(t *testing.T, m *Metrics) map[string]float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	out := make(map[string]float64)
	for _, f := range families {
		for _, s := range f.GetMetric() {
			if c := s.GetCounter(); c != nil {
				out[f.GetName()] += c.GetValue()
			}
			if g := s.GetGauge(); g != nil {
				out[f.GetName()] += g.GetValue()
			}
		}
	}
	return out
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.MessageSent()
		m.SendFailed()
		m.Applied("health", 1)
		m.Reloaded("default")
		m.Propagated(1)
		m.SetGeneration(1)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Reloaded("revert")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `unitbalance_reloads_total{kind="revert"} 1`))
}
