// Package pipeline runs account datasources through decoding pipes.
//
// # Overview
//
// A Pipeline starts every datasource in its own goroutine, fans their updates
// into one channel and passes each account update to the account pipes whose
// filters accept it. Metrics are flushed on a ticker and once more at
// shutdown.
//
// # Key Components
//
//   - Datasources: produce account snapshots (RPC polling, JSONL replay).
//   - Account Pipes: filter, decode and process account updates.
//   - Metrics: counts updates, decode outcomes and processing times.
//
// The pipeline stops when its context is cancelled, on SIGINT or SIGTERM, or
// once every datasource has returned.
package pipeline

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/lugondev/go-carbon-dex/internal/account"
	"github.com/lugondev/go-carbon-dex/internal/datasource"
	cerrors "github.com/lugondev/go-carbon-dex/internal/errors"
	"github.com/lugondev/go-carbon-dex/internal/metrics"
)

// ShutdownStrategy defines the shutdown behavior for the pipeline.
type ShutdownStrategy int

const (
	// ShutdownStrategyProcessPending terminates the datasources and finishes
	// processing all pending updates. This is the default behavior.
	ShutdownStrategyProcessPending ShutdownStrategy = iota

	// ShutdownStrategyImmediate stops the entire pipeline immediately.
	ShutdownStrategyImmediate
)

// String returns the strategy name.
func (s ShutdownStrategy) String() string {
	switch s {
	case ShutdownStrategyProcessPending:
		return "process_pending"
	case ShutdownStrategyImmediate:
		return "immediate"
	default:
		return "unknown"
	}
}

// DefaultChannelBufferSize is the default size of the channel buffer for the pipeline.
const DefaultChannelBufferSize = 1000

// DefaultMetricsFlushInterval is the default interval for flushing metrics.
const DefaultMetricsFlushInterval = 5 * time.Second

// Pipeline orchestrates the flow of account updates from datasources to
// account pipes and records metrics at each stage.
type Pipeline struct {
	// Datasources are the data sources that provide updates to the pipeline.
	Datasources []DatasourceWithID

	// AccountPipes handle account updates.
	AccountPipes []account.AccountPipeRunner

	// Metrics collects performance data.
	Metrics *metrics.Collection

	// MetricsFlushInterval defines how frequently metrics should be flushed.
	MetricsFlushInterval time.Duration

	// ShutdownStrategy determines how the pipeline behaves on shutdown.
	ShutdownStrategy ShutdownStrategy

	// ChannelBufferSize is the size of the channel buffer for updates.
	ChannelBufferSize int

	// HandleSignals makes Run stop on SIGINT and SIGTERM.
	HandleSignals bool

	// Logger is used for logging.
	Logger *slog.Logger

	// cancelFunc is used to cancel the pipeline context.
	cancelFunc context.CancelFunc

	// mu protects cancelFunc.
	mu sync.Mutex
}

// DatasourceWithID pairs a datasource with its unique identifier.
type DatasourceWithID struct {
	ID         datasource.DatasourceID
	Datasource datasource.Datasource
}

// NewPipeline creates a new Pipeline with default settings.
func NewPipeline() *Pipeline {
	return &Pipeline{
		Datasources:          make([]DatasourceWithID, 0),
		AccountPipes:         make([]account.AccountPipeRunner, 0),
		Metrics:              metrics.NewCollection(),
		MetricsFlushInterval: DefaultMetricsFlushInterval,
		ShutdownStrategy:     ShutdownStrategyProcessPending,
		ChannelBufferSize:    DefaultChannelBufferSize,
		HandleSignals:        true,
		Logger:               slog.Default(),
	}
}

// Builder returns a new PipelineBuilder for constructing a Pipeline.
func Builder() *PipelineBuilder {
	return NewPipelineBuilder()
}

// Run starts the datasources and processes their updates until shutdown.
//
// With ShutdownStrategyProcessPending, cancellation stops the datasources and
// Run returns after every update already queued has been processed. With
// ShutdownStrategyImmediate, Run returns as soon as it is cancelled.
// Datasource failures other than cancellation are joined into the returned
// error.
func (p *Pipeline) Run(ctx context.Context) error {
	if len(p.Datasources) == 0 {
		return cerrors.FailedToConsumeDatasource("no datasources configured")
	}

	p.Logger.Info("starting pipeline",
		"num_datasources", len(p.Datasources),
		"num_metrics", p.Metrics.Len(),
		"num_account_pipes", len(p.AccountPipes),
		"shutdown_strategy", p.ShutdownStrategy.String(),
	)

	if err := p.Metrics.Initialize(ctx); err != nil {
		return cerrors.Wrap(err, "failed to initialize metrics")
	}

	// Processing outlives cancellation while pending updates drain.
	processCtx := context.WithoutCancel(ctx)

	dsCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancelFunc = cancel
	p.mu.Unlock()
	defer cancel()

	bufferSize := max(p.ChannelBufferSize, 1)
	updateChan := make(chan datasource.UpdateWithSource, bufferSize)

	var (
		wg     sync.WaitGroup
		errMu  sync.Mutex
		dsErrs []error
	)
	multi := account.NewMultiAccountPipe().WithLogger(p.Logger)
	for _, pipe := range p.AccountPipes {
		multi.AddPipe(pipe)
	}

	for _, ds := range p.Datasources {
		wg.Add(1)
		go func(dsWithID DatasourceWithID) {
			defer wg.Done()
			err := dsWithID.Datasource.Consume(dsCtx, dsWithID.ID, updateChan, p.Metrics)
			if err == nil || dsCtx.Err() != nil {
				return
			}
			p.Logger.Error("error consuming datasource",
				"datasource_id", dsWithID.ID.String(),
				"error", err,
			)
			errMu.Lock()
			dsErrs = append(dsErrs, cerrors.Datasource(dsWithID.ID.String(), err))
			errMu.Unlock()
		}(ds)
	}

	go func() {
		wg.Wait()
		close(updateChan)
	}()

	flushInterval := p.MetricsFlushInterval
	if flushInterval <= 0 {
		flushInterval = DefaultMetricsFlushInterval
	}
	flushTicker := time.NewTicker(flushInterval)
	defer flushTicker.Stop()

	var sigChan chan os.Signal
	if p.HandleSignals {
		sigChan = make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
	}

	result := func() error {
		p.shutdown(processCtx)
		errMu.Lock()
		defer errMu.Unlock()
		return cerrors.Join(dsErrs...)
	}

	done := dsCtx.Done()
	for {
		select {
		case <-done:
			if p.ShutdownStrategy == ShutdownStrategyImmediate {
				p.Logger.Info("context cancelled, shutting down immediately")
				return result()
			}
			p.Logger.Info("context cancelled, processing pending updates")
			done = nil

		case sig := <-sigChan:
			p.Logger.Info("received signal, shutting down", "signal", sig)
			cancel()
			if p.ShutdownStrategy == ShutdownStrategyImmediate {
				return result()
			}
			done = nil
			sigChan = nil

		case <-flushTicker.C:
			if err := p.Metrics.Flush(processCtx); err != nil {
				p.Logger.Error("failed to flush metrics", "error", err)
			}

		case update, ok := <-updateChan:
			if !ok {
				p.Logger.Info("all datasources finished, shutting down")
				return result()
			}
			p.handle(processCtx, multi, update, len(updateChan))
		}
	}
}

// handle processes one update and records its metrics.
func (p *Pipeline) handle(ctx context.Context, multi *account.MultiAccountPipe, update datasource.UpdateWithSource, queued int) {
	_ = p.Metrics.IncrementCounter(ctx, metrics.MetricUpdatesReceived, 1)

	start := time.Now()
	err := p.process(ctx, multi, update)
	elapsed := time.Since(start)

	_ = p.Metrics.RecordHistogram(ctx, metrics.MetricUpdatesProcessTimeNanoseconds, float64(elapsed.Nanoseconds()))
	_ = p.Metrics.RecordHistogram(ctx, metrics.MetricUpdatesProcessTimeMilliseconds, float64(elapsed.Milliseconds()))

	if err != nil {
		p.Logger.Error("error processing update",
			"type", update.Update.Type.String(),
			"error", err,
		)
		_ = p.Metrics.IncrementCounter(ctx, metrics.MetricUpdatesFailed, 1)
	} else {
		_ = p.Metrics.IncrementCounter(ctx, metrics.MetricUpdatesSuccessful, 1)
	}

	_ = p.Metrics.IncrementCounter(ctx, metrics.MetricUpdatesProcessed, 1)
	_ = p.Metrics.UpdateGauge(ctx, metrics.MetricUpdatesQueued, float64(queued))
}

// Stop cancels the datasources of a running pipeline.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancelFunc != nil {
		p.cancelFunc()
	}
}

// shutdown flushes and shuts down the metrics.
func (p *Pipeline) shutdown(ctx context.Context) {
	p.Logger.Info("pipeline shutdown starting")

	if err := p.Metrics.Flush(ctx); err != nil {
		p.Logger.Error("failed to flush metrics during shutdown", "error", err)
	}
	if err := p.Metrics.Shutdown(ctx); err != nil {
		p.Logger.Error("failed to shutdown metrics", "error", err)
	}

	p.Logger.Info("pipeline shutdown complete")
}

// process routes a single update to the account pipes.
func (p *Pipeline) process(ctx context.Context, multi *account.MultiAccountPipe, update datasource.UpdateWithSource) error {
	p.Logger.Debug("processing update",
		"type", update.Update.Type.String(),
		"datasource_id", update.DatasourceID.String(),
	)

	switch update.Update.Type {
	case datasource.UpdateTypeAccount:
		acc := update.Update.Account
		if acc == nil {
			return nil
		}
		if err := multi.Run(ctx, update.DatasourceID, account.NewAccountMetadata(acc), &acc.Account, p.Metrics); err != nil {
			return err
		}
		_ = p.Metrics.IncrementCounter(ctx, metrics.MetricAccountUpdatesProcessed, 1)
		return nil

	default:
		return cerrors.ErrMissingUpdateType
	}
}
