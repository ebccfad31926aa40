// Package metrics records pipeline and decoder metrics.
//
// Decode outcomes are counted per schema and per failure kind, under the
// names built by DecodedMetric and DecodeFailureMetric, next to the pipeline
// totals listed in the Metric* constants.
package metrics

import (
	"context"
	"log/slog"
	"maps"
	"sync"

	"github.com/lugondev/go-carbon-dex/pkg/layout"
)

// Metrics is a metrics backend.
type Metrics interface {
	// Initialize is called once before the first update.
	Initialize(ctx context.Context) error

	// Flush reports buffered values.
	Flush(ctx context.Context) error

	// Shutdown is called once after the last update.
	Shutdown(ctx context.Context) error

	// UpdateGauge sets a value that can go up or down, like the queue length.
	UpdateGauge(ctx context.Context, name string, value float64) error

	// IncrementCounter adds value to a monotonic total.
	IncrementCounter(ctx context.Context, name string, value uint64) error

	// RecordHistogram records one observation, like a decode duration.
	RecordHistogram(ctx context.Context, name string, value float64) error
}

// Collection fans every call out to a fixed set of backends, stopping at
// the first error. A nil *Collection discards everything.
type Collection struct {
	backends []Metrics
}

// NewCollection creates a Collection over backends.
func NewCollection(backends ...Metrics) *Collection {
	return &Collection{backends: backends}
}

func (c *Collection) each(fn func(Metrics) error) error {
	if c == nil {
		return nil
	}
	for _, m := range c.backends {
		if err := fn(m); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of backends.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.backends)
}

func (c *Collection) Initialize(ctx context.Context) error {
	return c.each(func(m Metrics) error { return m.Initialize(ctx) })
}

func (c *Collection) Flush(ctx context.Context) error {
	return c.each(func(m Metrics) error { return m.Flush(ctx) })
}

func (c *Collection) Shutdown(ctx context.Context) error {
	return c.each(func(m Metrics) error { return m.Shutdown(ctx) })
}

func (c *Collection) UpdateGauge(ctx context.Context, name string, value float64) error {
	return c.each(func(m Metrics) error { return m.UpdateGauge(ctx, name, value) })
}

func (c *Collection) IncrementCounter(ctx context.Context, name string, value uint64) error {
	return c.each(func(m Metrics) error { return m.IncrementCounter(ctx, name, value) })
}

func (c *Collection) RecordHistogram(ctx context.Context, name string, value float64) error {
	return c.each(func(m Metrics) error { return m.RecordHistogram(ctx, name, value) })
}

// Observation summarizes the values recorded into one histogram.
type Observation struct {
	Count uint64  `json:"count"`
	Sum   float64 `json:"sum"`
	Max   float64 `json:"max"`
}

// Mean returns Sum/Count, or zero before the first value.
func (o Observation) Mean() float64 {
	if o.Count == 0 {
		return 0
	}
	return o.Sum / float64(o.Count)
}

// LogMetrics keeps every metric in memory and logs them on Flush.
// It is safe for concurrent use.
type LogMetrics struct {
	logger *slog.Logger

	mu         sync.Mutex
	gauges     map[string]float64
	counters   map[string]uint64
	histograms map[string]Observation
}

// NewLogMetrics creates a LogMetrics that logs to logger, or to the default
// logger when logger is nil.
func NewLogMetrics(logger *slog.Logger) *LogMetrics {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMetrics{
		logger:     logger,
		gauges:     make(map[string]float64),
		counters:   make(map[string]uint64),
		histograms: make(map[string]Observation),
	}
}

func (l *LogMetrics) Initialize(context.Context) error { return nil }

// Flush logs the current counters, gauges and histogram summaries.
func (l *LogMetrics) Flush(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logger.Info("metrics", "counters", l.counters, "gauges", l.gauges, "histograms", l.histograms)
	return nil
}

func (l *LogMetrics) Shutdown(context.Context) error { return nil }

func (l *LogMetrics) UpdateGauge(_ context.Context, name string, value float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gauges[name] = value
	return nil
}

func (l *LogMetrics) IncrementCounter(_ context.Context, name string, value uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counters[name] += value
	return nil
}

func (l *LogMetrics) RecordHistogram(_ context.Context, name string, value float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.histograms[name]
	o.Count++
	o.Sum += value
	o.Max = max(o.Max, value)
	l.histograms[name] = o
	return nil
}

// Counter returns the current total of a counter.
func (l *LogMetrics) Counter(name string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counters[name]
}

// Gauge returns the current value of a gauge.
func (l *LogMetrics) Gauge(name string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gauges[name]
}

// Histogram returns the summary of a histogram.
func (l *LogMetrics) Histogram(name string) Observation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.histograms[name]
}

// Counters returns a copy of every counter.
func (l *LogMetrics) Counters() map[string]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return maps.Clone(l.counters)
}

// Metric names used by the pipeline, the account pipes and the datasources.
const (
	MetricUpdatesReceived                = "updates_received"
	MetricUpdatesProcessed               = "updates_processed"
	MetricUpdatesSuccessful              = "updates_successful"
	MetricUpdatesFailed                  = "updates_failed"
	MetricUpdatesQueued                  = "updates_queued"
	MetricUpdatesFiltered                = "updates_filtered"
	MetricUpdatesProcessTimeNanoseconds  = "updates_process_time_nanoseconds"
	MetricUpdatesProcessTimeMilliseconds = "updates_process_time_milliseconds"
	MetricAccountUpdatesProcessed        = "account_updates_processed"
	MetricAccountDecodedTotal            = "account_decoded_total"
	MetricAccountDecodeFailuresTotal     = "account_decode_failures_total"
	MetricAccountDecodeTimeNanoseconds   = "account_decode_time_nanoseconds"
	MetricDatasourceDuplicatesSkipped    = "datasource_duplicates_skipped"
)

// DecodedMetric names the per-schema success counter, e.g.
// account_decoded_total.pump_pool.
func DecodedMetric(schema layout.SchemaID) string {
	return MetricAccountDecodedTotal + "." + schema.String()
}

// DecodeFailureMetric names the per-kind failure counter, e.g.
// account_decode_failures_total.UNKNOWN_SHAPE.
func DecodeFailureMetric(kind layout.ErrorKind) string {
	return MetricAccountDecodeFailuresTotal + "." + string(kind)
}
