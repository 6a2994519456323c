package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	m.ChatFinished("COMPLETED")
	m.ChatFinished("COMPLETED")
	m.ChatFinished("FAILED")
	m.GenerationObserved(1500*time.Millisecond, true)
	m.DocumentIngested("ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChatRequests.WithLabelValues("COMPLETED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatRequests.WithLabelValues("FAILED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsIngested.WithLabelValues("ok")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.GenerationDuration))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "second registration on the same registry must fail")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ChatFinished("COMPLETED")
		m.GenerationObserved(time.Second, false)
		m.DocumentIngested("ok")
	})
}
