package decoder

import (
	"context"

	"github.com/lugondev/go-carbon-dex/pkg/layout"
	"github.com/lugondev/go-carbon-dex/pkg/types"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchWorkers is used when DecodeBatch is given no worker count.
const DefaultBatchWorkers = 4

// BatchResult holds per-update outcomes. Records[i] and Errors[i] belong to
// the i-th input update; exactly one of them is non-nil for a decoded update,
// and both are nil for updates skipped after cancellation.
type BatchResult struct {
	Records []layout.Record
	Errors  []error
}

// Decoded returns the number of successfully decoded updates.
func (r *BatchResult) Decoded() int {
	n := 0
	for _, rec := range r.Records {
		if rec != nil {
			n++
		}
	}
	return n
}

// Failed returns the number of updates that failed to decode.
func (r *BatchResult) Failed() int {
	n := 0
	for _, err := range r.Errors {
		if err != nil {
			n++
		}
	}
	return n
}

// DecodeBatch decodes updates with at most workers concurrent decodes.
// A failed decode is recorded at its index and never stops the batch.
// The returned error is non-nil only when ctx is cancelled, in which case
// the result holds whatever was decoded before cancellation.
func (d *Dispatcher) DecodeBatch(ctx context.Context, updates []types.RawAccountUpdate, workers int) (*BatchResult, error) {
	result := &BatchResult{
		Records: make([]layout.Record, len(updates)),
		Errors:  make([]error, len(updates)),
	}
	if len(updates) == 0 {
		return result, nil
	}

	if workers <= 0 {
		workers = DefaultBatchWorkers
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for i := range updates {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			result.Records[i], result.Errors[i] = d.DecodeUpdate(updates[i])
			return nil
		})
	}

	_ = g.Wait()
	return result, ctx.Err()
}
