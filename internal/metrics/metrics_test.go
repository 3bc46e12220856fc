package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Submissions.WithLabelValues("offerTrade", Status(nil)).Inc()
	m.Submissions.WithLabelValues("offerTrade", Status(errors.New("boom"))).Add(2)
	m.Spread.Set(0.3)
	m.LastSlot.Set(250)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("offerTrade", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Submissions.WithLabelValues("offerTrade", "error")))
	assert.Equal(t, 0.3, testutil.ToFloat64(m.Spread))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := []string{}
	for _, family := range families {
		names = append(names, family.GetName())
	}
	assert.Contains(t, names, "betting_market_client_submissions_total")
	assert.Contains(t, names, "betting_market_client_spread")
	assert.Contains(t, names, "betting_market_client_last_slot")
}

func TestNopIsUnregistered(t *testing.T) {
	a, b := Nop(), Nop()
	a.Refreshes.WithLabelValues("ok").Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Refreshes.WithLabelValues("ok")))
}
