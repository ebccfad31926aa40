package output

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/lugondev/go-carbon-dex/internal/account"
	cerrors "github.com/lugondev/go-carbon-dex/internal/errors"
	"github.com/lugondev/go-carbon-dex/internal/metrics"
	"github.com/lugondev/go-carbon-dex/internal/processor"
	"github.com/lugondev/go-carbon-dex/pkg/decoder"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
	"github.com/lugondev/go-carbon-dex/pkg/types"
)

// Result is the outcome of decoding one update. Record and Err are both nil
// for an update skipped after cancellation.
type Result struct {
	Update types.RawAccountUpdate
	Record layout.Record
	Err    error
}

// Schema returns the schema of the record, or of the failed decode when the
// error names one.
func (r Result) Schema() layout.SchemaID {
	if r.Record != nil {
		return r.Record.Schema()
	}
	var de *layout.DecodeError
	if cerrors.As(r.Err, &de) {
		return de.Schema
	}
	return layout.SchemaUnknown
}

// DecodeFailure is returned by the print stage for a failed Result so that
// the enclosing error handler can decide what to do with it.
type DecodeFailure struct {
	Update types.RawAccountUpdate
	Err    error
}

func (f *DecodeFailure) Error() string { return f.Err.Error() }

func (f *DecodeFailure) Unwrap() error { return f.Err }

func (p *Printer) printResult(_ context.Context, r Result, _ *metrics.Collection) error {
	switch {
	case r.Err != nil:
		return &DecodeFailure{Update: r.Update, Err: r.Err}
	case r.Record != nil:
		return p.PrintRecord(r.Update, r.Record)
	default:
		return nil
	}
}

// ResultProcessor prints decoded records. Failed decodes are printed as error
// entries when printErrors is set and dropped otherwise. Write errors are
// returned.
func (p *Printer) ResultProcessor(printErrors bool) processor.Processor[Result] {
	return processor.NewErrorHandlingProcessor[Result](
		processor.ProcessorFunc[Result](p.printResult),
		func(err error) error {
			var f *DecodeFailure
			if !cerrors.As(err, &f) {
				return err
			}
			if !printErrors {
				return nil
			}
			return p.PrintError(f.Update, f.Err)
		})
}

// AccountProcessor adapts a Result processor to the input of an account pipe.
func AccountProcessor(next processor.Processor[Result]) processor.Processor[account.AccountProcessorInput[layout.Record]] {
	return processor.ProcessorFunc[account.AccountProcessorInput[layout.Record]](
		func(ctx context.Context, in account.AccountProcessorInput[layout.Record], m *metrics.Collection) error {
			r := Result{
				Update: types.RawAccountUpdate{
					Owner:    in.DecodedAccount.Owner,
					Lamports: in.DecodedAccount.Lamports,
				},
				Record: in.DecodedAccount.Data,
			}
			if in.Metadata != nil {
				r.Update.Address = in.Metadata.Pubkey
				r.Update.Slot = in.Metadata.Slot
			}
			if in.RawAccount != nil {
				r.Update.Data = in.RawAccount.Data
			}
			return next.Process(ctx, r, m)
		})
}

// DecodeProcessor decodes each batch with at most workers concurrent decodes
// and hands the outcomes to next in input order. It stops at the first error
// next returns, or when ctx is cancelled.
func DecodeProcessor(d *decoder.Dispatcher, workers int, next processor.Processor[Result]) processor.Processor[[]types.RawAccountUpdate] {
	return processor.ProcessorFunc[[]types.RawAccountUpdate](
		func(ctx context.Context, batch []types.RawAccountUpdate, m *metrics.Collection) error {
			res, err := d.DecodeBatch(ctx, batch, workers)
			if err != nil {
				return err
			}
			for i, update := range batch {
				r := Result{Update: update, Record: res.Records[i], Err: res.Errors[i]}
				if err := next.Process(ctx, r, m); err != nil {
					return err
				}
			}
			return nil
		})
}

// SchemaFilter returns a predicate accepting results of the given schemas.
// Failures that name no schema are rejected.
func SchemaFilter(ids ...layout.SchemaID) func(Result) bool {
	return func(r Result) bool {
		return slices.Contains(ids, r.Schema())
	}
}

// DefaultReplayBatchSize is used when ReplayOptions.BatchSize is not positive.
const DefaultReplayBatchSize = 256

// ReplayOptions configures Replay.
type ReplayOptions struct {
	// Workers bounds the concurrent decodes of one batch.
	Workers int

	// BatchSize is the number of updates decoded per batch.
	BatchSize int

	// PrintErrors prints failed decodes as error entries.
	PrintErrors bool

	// Quiet prints nothing; only the summary is collected.
	Quiet bool

	// Schemas, when set, limits printing to these schemas.
	Schemas []layout.SchemaID
}

// Replay decodes updates in batches and prints each outcome in input order.
// Every update is counted in the returned summary, printed or not.
func Replay(ctx context.Context, d *decoder.Dispatcher, p *Printer, updates []types.RawAccountUpdate, opts ReplayOptions) (Summary, error) {
	tally := NewTally()
	results := processor.NewChainedProcessor[Result](tally)
	if !opts.Quiet {
		var show processor.Processor[Result] = p.ResultProcessor(opts.PrintErrors)
		if len(opts.Schemas) > 0 {
			show = processor.NewConditionalProcessor(show, SchemaFilter(opts.Schemas...))
		}
		results.Add(show)
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultReplayBatchSize
	}
	batches := processor.NewBatchProcessor(DecodeProcessor(d, opts.Workers, results), batchSize)

	for _, update := range updates {
		if err := batches.Process(ctx, update, nil); err != nil {
			return tally.Summary(), err
		}
	}
	if err := batches.FlushBatch(ctx, nil); err != nil {
		return tally.Summary(), err
	}
	return tally.Summary(), nil
}

// Tally counts results per schema and per error kind.
// It is safe for concurrent use.
type Tally struct {
	mu sync.Mutex
	s  Summary
}

// NewTally creates an empty Tally.
func NewTally() *Tally {
	return &Tally{s: Summary{
		BySchema: make(map[string]int),
		ByKind:   make(map[string]int),
	}}
}

// Process counts r.
func (t *Tally) Process(_ context.Context, r Result, _ *metrics.Collection) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.s.Total++
	switch {
	case r.Record != nil:
		t.s.Decoded++
		t.s.BySchema[r.Record.Schema().String()]++
	case r.Err != nil:
		t.s.Failed++
		var de *layout.DecodeError
		if cerrors.As(r.Err, &de) {
			t.s.ByKind[string(de.Kind)]++
		} else {
			t.s.ByKind["OTHER"]++
		}
	}
	return nil
}

// Summary returns a copy of the counts so far.
func (t *Tally) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.s
	s.BySchema = maps.Clone(t.s.BySchema)
	s.ByKind = maps.Clone(t.s.ByKind)
	return s
}
