package output

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/lugondev/go-carbon-dex/internal/decoder/meteora"
	"github.com/lugondev/go-carbon-dex/internal/decoder/pump"
	"github.com/lugondev/go-carbon-dex/internal/decoder/raydium"
	"github.com/lugondev/go-carbon-dex/internal/decoder/solfi"
	"github.com/lugondev/go-carbon-dex/internal/dex"
	"github.com/lugondev/go-carbon-dex/internal/testutil"
	"github.com/lugondev/go-carbon-dex/pkg/types"
)

// benchUpdates cycles through one snapshot per program so every run mixes
// layouts of very different sizes.
func benchUpdates(n int) []types.RawAccountUpdate {
	shapes := []struct {
		owner types.Pubkey
		size  int
	}{
		{pump.ProgramID, pump.PoolSize},
		{raydium.AmmV4ProgramID, raydium.AmmV4PoolSize},
		{raydium.CpmmProgramID, raydium.CpmmPoolSize},
		{raydium.ClmmProgramID, raydium.ClmmPoolSize},
		{solfi.ProgramID, solfi.PoolSize},
		{meteora.DlmmProgramID, meteora.DlmmPoolSize},
		{meteora.PoolsProgramID, meteora.PoolSize},
	}
	updates := make([]types.RawAccountUpdate, n)
	for i := range updates {
		s := shapes[i%len(shapes)]
		updates[i] = types.RawAccountUpdate{
			Address: testutil.Key(byte(i)),
			Owner:   s.owner,
			Data:    testutil.Pattern(s.size, uint32(i)),
			Slot:    uint64(i),
		}
	}
	return updates
}

func BenchmarkReplay(b *testing.B) {
	d, err := dex.NewDispatcher(dex.DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}
	updates := benchUpdates(1024)
	ctx := context.Background()

	for _, format := range []Format{FormatText, FormatJSON} {
		for _, workers := range []int{1, 4} {
			b.Run(fmt.Sprintf("%s/workers_%d", format, workers), func(b *testing.B) {
				p := NewPrinter(io.Discard, format)
				opts := ReplayOptions{Workers: workers, PrintErrors: true}

				b.ReportAllocs()
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					if _, err := Replay(ctx, d, p, updates, opts); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkReplayQuiet(b *testing.B) {
	d, err := dex.NewDispatcher(dex.DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}
	updates := benchUpdates(1024)
	ctx := context.Background()

	for _, batchSize := range []int{16, 256} {
		b.Run(fmt.Sprintf("batch_%d", batchSize), func(b *testing.B) {
			p := NewPrinter(io.Discard, FormatText)
			opts := ReplayOptions{Workers: 4, BatchSize: batchSize, Quiet: true}

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := Replay(ctx, d, p, updates, opts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkResultProcessor(b *testing.B) {
	d, err := dex.NewDispatcher(dex.DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}
	update := benchUpdates(1)[0]
	rec, err := d.DecodeUpdate(update)
	if err != nil {
		b.Fatal(err)
	}
	r := Result{Update: update, Record: rec}
	ctx := context.Background()

	for _, format := range []Format{FormatText, FormatJSON} {
		b.Run(string(format), func(b *testing.B) {
			show := NewPrinter(io.Discard, format).ResultProcessor(false)

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = show.Process(ctx, r, nil)
			}
		})
	}
}
