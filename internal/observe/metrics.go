// Package observe provides observability primitives for Accentis:
// OpenTelemetry metrics for the evaluation pipeline and SDK bootstrap with a
// Prometheus exporter bridge.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A package-level
// default [Metrics] instance ([DefaultMetrics]) is provided for convenience;
// tests should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Accentis metrics.
const meterName = "github.com/accentis/accentis"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// ASRDuration tracks speech-to-text transcription latency.
	ASRDuration metric.Float64Histogram

	// ForcedAlignDuration tracks forced-aligner (MFA) run latency.
	ForcedAlignDuration metric.Float64Histogram

	// EvalDuration tracks phoneme alignment plus scoring latency for a
	// single utterance.
	EvalDuration metric.Float64Histogram

	// --- Score distribution ---

	// Scores records the overall accuracy of each evaluation as a fraction.
	// Use with attribute.String("strategy", ...).
	Scores metric.Float64Histogram

	// --- Counters ---

	// Evaluations counts completed utterance evaluations. Use with
	// attributes: attribute.String("strategy", ...), attribute.String("status", ...)
	Evaluations metric.Int64Counter

	// ProviderErrors counts collaborator failures. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveBatches tracks the number of batch evaluations in flight.
	ActiveBatches metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds). ASR and
// forced alignment are batch operations that can take several seconds per
// utterance, so the upper buckets reach a minute.
var latencyBuckets = []float64{
	0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// scoreBuckets covers the [0, 1] accuracy range in even steps.
var scoreBuckets = []float64{
	0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ASRDuration, err = m.Float64Histogram("accentis.asr.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ForcedAlignDuration, err = m.Float64Histogram("accentis.forcedalign.duration",
		metric.WithDescription("Latency of forced-aligner runs."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.EvalDuration, err = m.Float64Histogram("accentis.eval.duration",
		metric.WithDescription("Latency of phoneme alignment and scoring per utterance."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Scores, err = m.Float64Histogram("accentis.eval.score",
		metric.WithDescription("Distribution of overall pronunciation scores by strategy."),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Evaluations, err = m.Int64Counter("accentis.eval.total",
		metric.WithDescription("Total utterance evaluations by strategy and status."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("accentis.provider.errors",
		metric.WithDescription("Total collaborator errors by provider and kind."),
	); err != nil {
		return nil, err
	}
	if met.ActiveBatches, err = m.Int64UpDownCounter("accentis.active_batches",
		metric.WithDescription("Number of batch evaluations in flight."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordEvaluation records one completed evaluation: its score sample plus
// the counter increment with the standard attribute set.
func (m *Metrics) RecordEvaluation(ctx context.Context, strategy string, overall float64) {
	m.Scores.Record(ctx, overall,
		metric.WithAttributes(attribute.String("strategy", strategy)),
	)
	m.Evaluations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("strategy", strategy),
			attribute.String("status", "ok"),
		),
	)
}

// RecordProviderError records a collaborator failure.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}
