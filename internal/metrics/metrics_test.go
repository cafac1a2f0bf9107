package metrics

import (
	"testing"
	"time"

	"github.com/mikey/phish-detector/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	require.NoError(t, err)

	r.ObservePrediction(core.LabelPhishing, false, 5*time.Millisecond)
	r.ObservePrediction(core.LabelPhishing, true, time.Millisecond)
	r.ObservePrediction(core.LabelLegitimate, false, time.Millisecond)
	r.ObserveFailure("invalid_input")
	r.SetModel("rf-1", 42)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.predictions.WithLabelValues("Phishing", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.predictions.WithLabelValues("Phishing", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("invalid_input")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.modelInfo.WithLabelValues("rf-1", "42")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.latency))
}

func TestNewRecorderRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRecorder(reg)
	require.NoError(t, err)

	_, err = NewRecorder(reg)
	assert.Error(t, err)
}
