// Package observe provides observability primitives for versematch:
// OpenTelemetry metrics with a Prometheus exporter bridge, and tracing spans
// over the analyze pipeline.
//
// A package-level default [Metrics] instance ([DefaultMetrics]) is provided
// for convenience; tests should use [NewMetrics] with their own
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all versematch metrics.
const meterName = "github.com/versematch/versematch"

// Metrics holds all OpenTelemetry metric instruments for the matching engine.
// The underlying OTel types handle their own synchronisation.
type Metrics struct {
	// AnalyzeDuration tracks end-to-end latency of one transcript analysis.
	// Attribute "path" is "citation" or "paraphrase".
	AnalyzeDuration metric.Float64Histogram

	// IndexBuildDuration tracks full-text index construction latency.
	IndexBuildDuration metric.Float64Histogram

	// EmbedDuration tracks embedding backend call latency.
	EmbedDuration metric.Float64Histogram

	// IndexBuilds counts completed index builds. Attribute "translation".
	IndexBuilds metric.Int64Counter

	// EmbedRequests counts embedding backend calls. Attributes "model",
	// "status".
	EmbedRequests metric.Int64Counter

	// CacheEvents counts verse token/embedding cache lookups. Attributes
	// "cache" ("tokens" or "embeddings"), "outcome" ("hit" or "miss").
	CacheEvents metric.Int64Counter

	// Matches counts accepted matches returned to callers. Attribute "path".
	Matches metric.Int64Counter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// a pipeline that must answer well under a second.
var latencyBuckets = []float64{
	0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
}

// NewMetrics creates a fully initialised [Metrics] using mp. Returns an error
// if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.AnalyzeDuration, err = m.Float64Histogram("versematch.analyze.duration",
		metric.WithDescription("End-to-end latency of one transcript chunk analysis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.IndexBuildDuration, err = m.Float64Histogram("versematch.index.build.duration",
		metric.WithDescription("Latency of full-text index construction."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.EmbedDuration, err = m.Float64Histogram("versematch.embed.duration",
		metric.WithDescription("Latency of embedding backend calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.IndexBuilds, err = m.Int64Counter("versematch.index.builds",
		metric.WithDescription("Completed full-text index builds by translation."),
	); err != nil {
		return nil, err
	}
	if met.EmbedRequests, err = m.Int64Counter("versematch.embed.requests",
		metric.WithDescription("Embedding backend requests by model and status."),
	); err != nil {
		return nil, err
	}
	if met.CacheEvents, err = m.Int64Counter("versematch.cache.events",
		metric.WithDescription("Verse cache lookups by cache and outcome."),
	); err != nil {
		return nil, err
	}
	if met.Matches, err = m.Int64Counter("versematch.matches",
		metric.WithDescription("Accepted matches returned to callers by path."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call from [otel.GetMeterProvider]. Panics if instrument creation
// fails, which cannot happen with the global provider.
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

// RecordIndexBuild records one completed index build.
func (m *Metrics) RecordIndexBuild(ctx context.Context, translationID string, d time.Duration) {
	if m == nil {
		return
	}
	m.IndexBuilds.Add(ctx, 1, metric.WithAttributes(attribute.String("translation", translationID)))
	m.IndexBuildDuration.Record(ctx, d.Seconds())
}

// RecordEmbed records one embedding backend call.
func (m *Metrics) RecordEmbed(ctx context.Context, model, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.EmbedRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("status", status),
	))
	m.EmbedDuration.Record(ctx, d.Seconds())
}

// RecordCacheEvent records a hit or miss on one of the verse caches.
func (m *Metrics) RecordCacheEvent(ctx context.Context, cache string, hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.CacheEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache", cache),
		attribute.String("outcome", outcome),
	))
}

// RecordAnalyze records one analysis call and the matches it produced.
func (m *Metrics) RecordAnalyze(ctx context.Context, path string, matches int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("path", path))
	m.AnalyzeDuration.Record(ctx, d.Seconds(), attrs)
	m.Matches.Add(ctx, int64(matches), attrs)
}
