// Package metrics records what happened to the transactions go-amm submits:
// how many were sent, confirmed or rejected, how long confirmation took and
// what the payer had left. Backends implement Metrics; Collection fans a call
// out to every registered backend.
package metrics

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Metric names recorded by the transaction submitter and CLI.
const (
	MetricTransactionsSubmitted        = "transactions_submitted"
	MetricTransactionsConfirmed        = "transactions_confirmed"
	MetricTransactionsFailed           = "transactions_failed"
	MetricConfirmationTimeMilliseconds = "confirmation_time_milliseconds"
	MetricInstructionsPerTransaction   = "instructions_per_transaction"
	MetricPayerBalanceLamports         = "payer_balance_lamports"
	MetricJournalWriteFailures         = "journal_write_failures"
)

// Metrics is a sink for submission metrics.
type Metrics interface {
	Initialize(ctx context.Context) error
	// Flush reports whatever the backend has buffered.
	Flush(ctx context.Context) error
	Shutdown(ctx context.Context) error

	UpdateGauge(ctx context.Context, name string, value float64) error
	IncrementCounter(ctx context.Context, name string, value uint64) error
	RecordHistogram(ctx context.Context, name string, value float64) error
}

// Collection forwards every call to its backends in registration order and
// stops at the first backend that fails.
type Collection struct {
	mu       sync.RWMutex
	backends []Metrics
}

var _ Metrics = (*Collection)(nil)

// NewCollection creates a Collection that forwards to backends.
func NewCollection(backends ...Metrics) *Collection {
	return &Collection{backends: backends}
}

// Add registers another backend.
func (c *Collection) Add(m Metrics) {
	c.mu.Lock()
	c.backends = append(c.backends, m)
	c.mu.Unlock()
}

// Len is the number of registered backends.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.backends)
}

func (c *Collection) each(fn func(Metrics) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.backends {
		if err := fn(m); err != nil {
			return err
		}
	}
	return nil
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

// NoopMetrics drops everything. Submitters start with it until WithMetrics is called.
type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics { return &NoopMetrics{} }

func (*NoopMetrics) Initialize(context.Context) error                       { return nil }
func (*NoopMetrics) Flush(context.Context) error                            { return nil }
func (*NoopMetrics) Shutdown(context.Context) error                         { return nil }
func (*NoopMetrics) UpdateGauge(context.Context, string, float64) error     { return nil }
func (*NoopMetrics) IncrementCounter(context.Context, string, uint64) error { return nil }
func (*NoopMetrics) RecordHistogram(context.Context, string, float64) error { return nil }

// LogMetrics keeps values in memory and writes them to a slog.Logger. Each
// update is logged at debug level; Flush logs a per-run summary.
type LogMetrics struct {
	logger *slog.Logger

	mu         sync.RWMutex
	gauges     map[string]float64
	counters   map[string]uint64
	histograms map[string][]float64
}

// NewLogMetrics uses slog.Default when logger is nil.
func NewLogMetrics(logger *slog.Logger) *LogMetrics {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMetrics{
		logger:     logger.With("component", "metrics"),
		gauges:     map[string]float64{},
		counters:   map[string]uint64{},
		histograms: map[string][]float64{},
	}
}

func (l *LogMetrics) Initialize(context.Context) error {
	l.logger.Debug("metrics started")
	return nil
}

// Flush logs the submission outcome counters and a min/mean/max line for
// every histogram that has samples. Nothing is logged for a run that
// submitted no transactions and recorded no gauges.
func (l *LogMetrics) Flush(context.Context) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.counters) == 0 && len(l.gauges) == 0 {
		return nil
	}
	l.logger.Debug("submission summary",
		"submitted", l.counters[MetricTransactionsSubmitted],
		"confirmed", l.counters[MetricTransactionsConfirmed],
		"failed", l.counters[MetricTransactionsFailed],
		"journal_failures", l.counters[MetricJournalWriteFailures],
		"gauges", l.gauges,
	)
	for _, name := range sortedKeys(l.histograms) {
		s := summarize(l.histograms[name])
		l.logger.Debug("histogram", "name", name, "count", s.Count, "min", s.Min, "mean", s.Mean, "max", s.Max)
	}
	return nil
}

func (l *LogMetrics) Shutdown(context.Context) error {
	l.logger.Debug("metrics stopped")
	return nil
}

func (l *LogMetrics) UpdateGauge(_ context.Context, name string, value float64) error {
	l.mu.Lock()
	l.gauges[name] = value
	l.mu.Unlock()

	l.logger.Debug("gauge", "name", name, "value", value)
	return nil
}

func (l *LogMetrics) IncrementCounter(_ context.Context, name string, value uint64) error {
	l.mu.Lock()
	l.counters[name] += value
	total := l.counters[name]
	l.mu.Unlock()

	l.logger.Debug("counter", "name", name, "delta", value, "total", total)
	return nil
}

func (l *LogMetrics) RecordHistogram(_ context.Context, name string, value float64) error {
	l.mu.Lock()
	l.histograms[name] = append(l.histograms[name], value)
	l.mu.Unlock()

	l.logger.Debug("sample", "name", name, "value", value)
	return nil
}

// Counter returns the running total of a counter.
func (l *LogMetrics) Counter(name string) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.counters[name]
}

// Gauge returns the last value set for a gauge.
func (l *LogMetrics) Gauge(name string) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.gauges[name]
}

// Histogram returns a copy of the samples recorded for name.
func (l *LogMetrics) Histogram(name string) []float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.histograms[name])
}

// Summary returns count, min, mean and max for a histogram.
func (l *LogMetrics) Summary(name string) Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return summarize(l.histograms[name])
}

// Summary describes the samples of one histogram. All fields are zero when
// there are no samples.
type Summary struct {
	Count int
	Min   float64
	Mean  float64
	Max   float64
}

func summarize(samples []float64) Summary {
	if len(samples) == 0 {
		return Summary{}
	}
	s := Summary{Count: len(samples), Min: samples[0], Max: samples[0]}
	var sum float64
	for _, v := range samples {
		sum += v
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
	}
	s.Mean = sum / float64(len(samples))
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
