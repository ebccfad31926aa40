package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lugondev/go-carbon-dex/internal/account"
	"github.com/lugondev/go-carbon-dex/internal/datasource"
	"github.com/lugondev/go-carbon-dex/internal/datasource/replay"
	"github.com/lugondev/go-carbon-dex/internal/decoder/pump"
	"github.com/lugondev/go-carbon-dex/internal/decoder/raydium"
	"github.com/lugondev/go-carbon-dex/internal/dex"
	cerrors "github.com/lugondev/go-carbon-dex/internal/errors"
	"github.com/lugondev/go-carbon-dex/internal/filter"
	"github.com/lugondev/go-carbon-dex/internal/metrics"
	"github.com/lugondev/go-carbon-dex/internal/processor"
	"github.com/lugondev/go-carbon-dex/internal/testutil"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
	"github.com/lugondev/go-carbon-dex/pkg/types"
	"github.com/stretchr/testify/require"
)

type recordInput = account.AccountProcessorInput[layout.Record]

var discard = processor.ProcessorFunc[recordInput](func(context.Context, recordInput, *metrics.Collection) error { return nil })

func jsonl(owner types.Pubkey, data []byte, slot uint64) string {
	return fmt.Sprintf(`{"address":%q,"owner":%q,"data":%q,"slot":%d}`,
		testutil.Key(byte(slot)), owner, base64.StdEncoding.EncodeToString(data), slot)
}

// funcDatasource adapts a function into a Datasource.
type funcDatasource func(ctx context.Context, id datasource.DatasourceID, updates chan<- datasource.UpdateWithSource) error

func (f funcDatasource) Consume(ctx context.Context, id datasource.DatasourceID, updates chan<- datasource.UpdateWithSource, _ *metrics.Collection) error {
	return f(ctx, id, updates)
}

func (f funcDatasource) UpdateTypes() []datasource.UpdateType {
	return []datasource.UpdateType{datasource.UpdateTypeAccount}
}

func TestPipelineReplay(t *testing.T) {
	d, err := dex.NewDispatcher(dex.DefaultOptions())
	require.NoError(t, err)

	input := strings.Join([]string{
		jsonl(pump.ProgramID, testutil.Pattern(pump.PoolSize, 1), 1),
		jsonl(raydium.AmmV4ProgramID, make([]byte, 751), 2),
		jsonl(raydium.CpmmProgramID, testutil.Pattern(raydium.CpmmPoolSize, 3), 3),
		"garbage",
	}, "\n")

	lm := metrics.NewLogMetrics(nil)
	records := testutil.NewCollector[recordInput]()
	pumpOnly := testutil.NewCollector[recordInput]()

	p, err := Builder().
		Datasource(datasource.NewNamedDatasourceID("replay"), replay.NewReaderDatasource(strings.NewReader(input))).
		DispatcherPipe(d, records).
		DispatcherPipe(d, pumpOnly, filter.NewOwnerFilter(pump.ProgramID)).
		Metrics(metrics.NewCollection(lm)).
		HandleSignals(false).
		Build()
	require.NoError(t, err)
	require.NoError(t, p.Run(context.Background()))

	items := records.Items()
	require.Len(t, items, 2)
	require.Equal(t, layout.SchemaPumpPool, items[0].DecodedAccount.Data.Schema())
	require.Equal(t, layout.SchemaRaydiumCpmmPool, items[1].DecodedAccount.Data.Schema())
	require.Equal(t, uint64(3), items[1].Metadata.Slot)
	require.Equal(t, 1, pumpOnly.Len())

	require.Equal(t, uint64(3), lm.Counter(metrics.MetricUpdatesReceived))
	require.Equal(t, uint64(3), lm.Counter(metrics.MetricUpdatesSuccessful))
	require.Equal(t, uint64(3), lm.Counter(metrics.MetricAccountDecodedTotal))
	require.Equal(t, uint64(1), lm.Counter(metrics.MetricAccountDecodeFailuresTotal))
	require.Equal(t, uint64(1), lm.Counter(metrics.DecodeFailureMetric(layout.KindUnknownShape)))
	require.Equal(t, uint64(2), lm.Counter(metrics.MetricUpdatesFiltered))
	require.Equal(t, uint64(1), lm.Counter(replay.MetricReplayInvalidLine))
}

func TestPipelineDatasourceError(t *testing.T) {
	d, err := dex.NewDispatcher(dex.DefaultOptions())
	require.NoError(t, err)
	boom := errors.New("connection refused")

	p, err := Builder().
		Datasource(datasource.NewNamedDatasourceID("broken"), funcDatasource(func(context.Context, datasource.DatasourceID, chan<- datasource.UpdateWithSource) error {
			return boom
		})).
		DispatcherPipe(d, discard).
		HandleSignals(false).
		Build()
	require.NoError(t, err)

	err = p.Run(context.Background())
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, err, cerrors.NewError(cerrors.ErrCodeDatasource, ""))
}

func TestPipelineProcessesPendingOnCancel(t *testing.T) {
	d, err := dex.NewDispatcher(dex.DefaultOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const queued = 5
	ds := funcDatasource(func(ctx context.Context, id datasource.DatasourceID, updates chan<- datasource.UpdateWithSource) error {
		for i := range queued {
			raw := types.RawAccountUpdate{Owner: pump.ProgramID, Data: testutil.Pattern(pump.PoolSize, uint32(i)), Slot: uint64(i)}
			if err := datasource.Send(ctx, updates, id, datasource.FromRaw(raw)); err != nil {
				return err
			}
		}
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})

	records := testutil.NewCollector[recordInput]()
	p, err := Builder().
		Datasource(datasource.NewUniqueDatasourceID(), ds).
		DispatcherPipe(d, records).
		ChannelBufferSize(queued).
		WithGracefulShutdown().
		HandleSignals(false).
		Build()
	require.NoError(t, err)

	require.NoError(t, p.Run(ctx))
	require.Equal(t, queued, records.Len())
}

func TestPipelineStop(t *testing.T) {
	d, err := dex.NewDispatcher(dex.DefaultOptions())
	require.NoError(t, err)

	started := make(chan struct{})
	ds := funcDatasource(func(ctx context.Context, _ datasource.DatasourceID, _ chan<- datasource.UpdateWithSource) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	p, err := Builder().
		Datasource(datasource.NewUniqueDatasourceID(), ds).
		DispatcherPipe(d, discard).
		WithImmediateShutdown().
		HandleSignals(false).
		Build()
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(context.Background()) }()

	<-started
	p.Stop()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not stop")
	}
}

func TestBuilderValidation(t *testing.T) {
	_, err := Builder().Build()
	require.ErrorContains(t, err, "no datasources")

	_, err = Builder().
		Datasource(datasource.NewUniqueDatasourceID(), replay.NewReaderDatasource(strings.NewReader(""))).
		Build()
	require.ErrorContains(t, err, "no account pipes")

	require.Equal(t, "process_pending", ShutdownStrategyProcessPending.String())
	require.Equal(t, "immediate", ShutdownStrategyImmediate.String())
}
