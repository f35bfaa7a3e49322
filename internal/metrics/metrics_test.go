package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SessionsAccepted.WithLabelValues("dev-endpoint").Inc()
	m.IdentitiesTotal.WithLabelValues("dev-endpoint", "original").Add(3)
	m.IdentitiesTotal.WithLabelValues("dev-endpoint", "filtered").Add(1)
	m.SignDecisions.WithLabelValues("dev-endpoint", "allowed").Inc()
	m.ObserveUpstreamRoundTrip("dev-endpoint", time.Now().Add(-10*time.Millisecond))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SessionsAccepted.WithLabelValues("dev-endpoint")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.IdentitiesTotal.WithLabelValues("dev-endpoint", "original")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.IdentitiesTotal.WithLabelValues("dev-endpoint", "filtered")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SignDecisions.WithLabelValues("dev-endpoint", "allowed")))

	count, err := testutil.GatherAndCount(reg, "authsock_upstream_roundtrip_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
