// Package metrics exports detection counters and latencies to Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/mikey/phish-detector/internal/core"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder implements core.MetricsRecorder with Prometheus collectors
type Recorder struct {
	predictions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	latency     prometheus.Histogram
	modelInfo   *prometheus.GaugeVec
}

// NewRecorder creates the collectors and registers them with reg
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "phish_detector_predictions_total",
			Help: "Total number of emails classified",
		}, []string{"prediction", "cached"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "phish_detector_failures_total",
			Help: "Total number of failed classifications",
		}, []string{"reason"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "phish_detector_prediction_seconds",
			Help:    "Time taken to classify an email",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		modelInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "phish_detector_model_info",
			Help: "Loaded model version and feature count",
		}, []string{"version", "features"}),
	}

	for _, c := range []prometheus.Collector{r.predictions, r.failures, r.latency, r.modelInfo} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObservePrediction counts a successful classification
func (r *Recorder) ObservePrediction(label core.Label, cached bool, elapsed time.Duration) {
	r.predictions.WithLabelValues(string(label), strconv.FormatBool(cached)).Inc()
	r.latency.Observe(elapsed.Seconds())
}

// ObserveFailure counts a failed classification
func (r *Recorder) ObserveFailure(reason string) {
	r.failures.WithLabelValues(reason).Inc()
}

// SetModel publishes the loaded model's identity
func (r *Recorder) SetModel(version string, features int) {
	r.modelInfo.Reset()
	r.modelInfo.WithLabelValues(version, strconv.Itoa(features)).Set(1)
}
