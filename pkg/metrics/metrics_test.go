package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))

	StageTransitions.WithLabelValues("new", "in_progress").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(StageTransitions.WithLabelValues("new", "in_progress")))
}
