package pipeline

import (
	"log/slog"
	"time"

	"github.com/lugondev/go-carbon-dex/internal/account"
	"github.com/lugondev/go-carbon-dex/internal/datasource"
	cerrors "github.com/lugondev/go-carbon-dex/internal/errors"
	"github.com/lugondev/go-carbon-dex/internal/filter"
	"github.com/lugondev/go-carbon-dex/internal/metrics"
	"github.com/lugondev/go-carbon-dex/internal/processor"
	"github.com/lugondev/go-carbon-dex/pkg/decoder"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
)

// PipelineBuilder provides a fluent API for constructing a Pipeline.
type PipelineBuilder struct {
	pipeline *Pipeline
}

// NewPipelineBuilder creates a new PipelineBuilder with default settings.
func NewPipelineBuilder() *PipelineBuilder {
	return &PipelineBuilder{
		pipeline: NewPipeline(),
	}
}

// Datasource adds a data source to the pipeline.
func (b *PipelineBuilder) Datasource(id datasource.DatasourceID, ds datasource.Datasource) *PipelineBuilder {
	b.pipeline.Datasources = append(b.pipeline.Datasources, DatasourceWithID{
		ID:         id,
		Datasource: ds,
	})
	return b
}

// AccountPipe adds an account pipe to the pipeline.
// The pipe must implement AccountPipeRunner interface.
func (b *PipelineBuilder) AccountPipe(pipe account.AccountPipeRunner) *PipelineBuilder {
	b.pipeline.AccountPipes = append(b.pipeline.AccountPipes, pipe)
	return b
}

// DispatcherPipe adds a pipe that decodes every layout the dispatcher knows
// and hands the records to proc.
func (b *PipelineBuilder) DispatcherPipe(
	d *decoder.Dispatcher,
	proc processor.Processor[account.AccountProcessorInput[layout.Record]],
	filters ...filter.Filter,
) *PipelineBuilder {
	pipe := account.NewDispatcherPipe(d, proc, filters...).WithLogger(b.pipeline.Logger)
	b.pipeline.AccountPipes = append(b.pipeline.AccountPipes, pipe)
	return b
}

// Metrics sets a custom metrics collection for the pipeline.
func (b *PipelineBuilder) Metrics(mc *metrics.Collection) *PipelineBuilder {
	b.pipeline.Metrics = mc
	return b
}

// MetricsFlushInterval sets the interval for flushing metrics.
func (b *PipelineBuilder) MetricsFlushInterval(interval time.Duration) *PipelineBuilder {
	b.pipeline.MetricsFlushInterval = interval
	return b
}

// ShutdownStrategy sets the shutdown strategy for the pipeline.
func (b *PipelineBuilder) ShutdownStrategy(strategy ShutdownStrategy) *PipelineBuilder {
	b.pipeline.ShutdownStrategy = strategy
	return b
}

// ChannelBufferSize sets the buffer size for the update channel.
func (b *PipelineBuilder) ChannelBufferSize(size int) *PipelineBuilder {
	b.pipeline.ChannelBufferSize = size
	return b
}

// HandleSignals sets whether the pipeline stops on SIGINT and SIGTERM.
func (b *PipelineBuilder) HandleSignals(enabled bool) *PipelineBuilder {
	b.pipeline.HandleSignals = enabled
	return b
}

// Logger sets a custom logger for the pipeline.
func (b *PipelineBuilder) Logger(logger *slog.Logger) *PipelineBuilder {
	b.pipeline.Logger = logger
	return b
}

// Build returns the constructed Pipeline. It fails if no datasource or no
// account pipe was added.
func (b *PipelineBuilder) Build() (*Pipeline, error) {
	if len(b.pipeline.Datasources) == 0 {
		return nil, cerrors.Pipeline("build pipeline", cerrors.Custom("no datasources"))
	}
	if len(b.pipeline.AccountPipes) == 0 {
		return nil, cerrors.Pipeline("build pipeline", cerrors.Custom("no account pipes"))
	}
	if b.pipeline.Metrics == nil {
		b.pipeline.Metrics = metrics.NewCollection()
	}
	return b.pipeline, nil
}

// WithDefaultMetrics adds default metrics to the pipeline.
func (b *PipelineBuilder) WithDefaultMetrics() *PipelineBuilder {
	b.pipeline.Metrics = metrics.NewCollection()
	return b
}

// WithGracefulShutdown configures the pipeline for graceful shutdown.
func (b *PipelineBuilder) WithGracefulShutdown() *PipelineBuilder {
	b.pipeline.ShutdownStrategy = ShutdownStrategyProcessPending
	return b
}

// WithImmediateShutdown configures the pipeline for immediate shutdown.
func (b *PipelineBuilder) WithImmediateShutdown() *PipelineBuilder {
	b.pipeline.ShutdownStrategy = ShutdownStrategyImmediate
	return b
}

// AddAccountPipeTyped adds a typed AccountPipe.
func AddAccountPipeTyped[T any](
	b *PipelineBuilder,
	pipe *account.AccountPipe[T],
) *PipelineBuilder {
	b.pipeline.AccountPipes = append(b.pipeline.AccountPipes, pipe)
	return b
}
