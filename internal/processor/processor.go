// Package processor defines the Processor interface that receives decoded
// account records at the end of a pipe.
//
// # Overview
//
// Processors are generic over their input, so the same combinators serve any
// pipe:
//   - ProcessorFunc adapts a function
//   - ChainedProcessor runs several processors in order
//   - ConditionalProcessor runs a processor only when a predicate holds
//   - ErrorHandlingProcessor maps or swallows a processor's errors
//   - BatchProcessor groups inputs and hands them on in slices
package processor

import (
	"context"
	"sync"

	"github.com/lugondev/go-carbon-dex/internal/metrics"
)

// Processor defines the interface for processing data within the pipeline.
//
// The type parameter T specifies the input data type. Processors may be called
// from several goroutines when more than one datasource feeds a pipeline.
type Processor[T any] interface {
	// Process handles the given data.
	// The metrics collection is used for recording performance metrics.
	Process(ctx context.Context, data T, metrics *metrics.Collection) error
}

// ProcessorFunc is a function type that implements the Processor interface.
type ProcessorFunc[T any] func(ctx context.Context, data T, metrics *metrics.Collection) error

// Process implements the Processor interface.
func (f ProcessorFunc[T]) Process(ctx context.Context, data T, metrics *metrics.Collection) error {
	return f(ctx, data, metrics)
}

// ChainedProcessor calls each processor in sequence with the same input and
// stops at the first error.
type ChainedProcessor[T any] struct {
	processors []Processor[T]
}

// NewChainedProcessor creates a new ChainedProcessor with the given processors.
func NewChainedProcessor[T any](processors ...Processor[T]) *ChainedProcessor[T] {
	return &ChainedProcessor[T]{processors: processors}
}

// Add adds a processor to the chain.
func (c *ChainedProcessor[T]) Add(p Processor[T]) {
	c.processors = append(c.processors, p)
}

// Process calls each processor in sequence.
func (c *ChainedProcessor[T]) Process(ctx context.Context, data T, metrics *metrics.Collection) error {
	for _, p := range c.processors {
		if err := p.Process(ctx, data, metrics); err != nil {
			return err
		}
	}
	return nil
}

// ConditionalProcessor wraps a processor with a condition function.
type ConditionalProcessor[T any] struct {
	processor Processor[T]
	condition func(T) bool
}

// NewConditionalProcessor creates a new ConditionalProcessor.
func NewConditionalProcessor[T any](processor Processor[T], condition func(T) bool) *ConditionalProcessor[T] {
	return &ConditionalProcessor[T]{
		processor: processor,
		condition: condition,
	}
}

// Process calls the wrapped processor only if the condition returns true.
func (c *ConditionalProcessor[T]) Process(ctx context.Context, data T, metrics *metrics.Collection) error {
	if c.condition(data) {
		return c.processor.Process(ctx, data, metrics)
	}
	return nil
}

// ErrorHandlingProcessor passes the wrapped processor's errors through
// errorHandler. A handler returning nil swallows the error.
type ErrorHandlingProcessor[T any] struct {
	processor    Processor[T]
	errorHandler func(error) error
}

// NewErrorHandlingProcessor creates a new ErrorHandlingProcessor.
func NewErrorHandlingProcessor[T any](processor Processor[T], errorHandler func(error) error) *ErrorHandlingProcessor[T] {
	return &ErrorHandlingProcessor[T]{
		processor:    processor,
		errorHandler: errorHandler,
	}
}

// Process calls the wrapped processor and handles any errors.
func (e *ErrorHandlingProcessor[T]) Process(ctx context.Context, data T, metrics *metrics.Collection) error {
	err := e.processor.Process(ctx, data, metrics)
	if err != nil && e.errorHandler != nil {
		return e.errorHandler(err)
	}
	return err
}

// BatchProcessor collects items and processes them in batches.
// It is safe for concurrent use.
type BatchProcessor[T any] struct {
	processor Processor[[]T]
	batchSize int

	mu     sync.Mutex
	buffer []T
}

// NewBatchProcessor creates a new BatchProcessor. A batchSize below 1 is
// treated as 1.
func NewBatchProcessor[T any](processor Processor[[]T], batchSize int) *BatchProcessor[T] {
	batchSize = max(batchSize, 1)
	return &BatchProcessor[T]{
		processor: processor,
		batchSize: batchSize,
		buffer:    make([]T, 0, batchSize),
	}
}

// Process adds an item to the buffer and processes the batch when full.
func (b *BatchProcessor[T]) Process(ctx context.Context, data T, metrics *metrics.Collection) error {
	b.mu.Lock()
	b.buffer = append(b.buffer, data)
	if len(b.buffer) < b.batchSize {
		b.mu.Unlock()
		return nil
	}
	batch := b.take()
	b.mu.Unlock()
	return b.processor.Process(ctx, batch, metrics)
}

// FlushBatch processes any remaining items in the buffer.
func (b *BatchProcessor[T]) FlushBatch(ctx context.Context, metrics *metrics.Collection) error {
	b.mu.Lock()
	if len(b.buffer) == 0 {
		b.mu.Unlock()
		return nil
	}
	batch := b.take()
	b.mu.Unlock()
	return b.processor.Process(ctx, batch, metrics)
}

// take hands the buffered items off and starts a new buffer. b.mu must be held.
func (b *BatchProcessor[T]) take() []T {
	batch := b.buffer
	b.buffer = make([]T, 0, b.batchSize)
	return batch
}
