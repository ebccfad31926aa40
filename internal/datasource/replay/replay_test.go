package replay

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/lugondev/go-carbon-dex/internal/datasource"
	"github.com/lugondev/go-carbon-dex/internal/errors"
	"github.com/lugondev/go-carbon-dex/internal/metrics"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
)

var (
	testOwner   = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
	testAddress = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
)

func line(data, encoding string, slot uint64) string {
	enc := ""
	if encoding != "" {
		enc = fmt.Sprintf(`,"encoding":%q`, encoding)
	}
	return fmt.Sprintf(`{"address":%q,"owner":%q,"data":%q%s,"slot":%d,"lamports":7}`,
		testAddress, testOwner, data, enc, slot)
}

func TestDecodeData(t *testing.T) {
	raw := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}

	tests := []struct {
		name     string
		input    string
		encoding string
	}{
		{"default base64", base64.StdEncoding.EncodeToString(raw), ""},
		{"base64", base64.StdEncoding.EncodeToString(raw), "base64"},
		{"base58", base58.Encode(raw), "base58"},
		{"hex", hex.EncodeToString(raw), "hex"},
		{"hex with prefix", "0x" + hex.EncodeToString(raw), "HEX"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeData(tt.input, tt.encoding)
			require.NoError(t, err)
			require.Equal(t, raw, got)
		})
	}

	_, err := DecodeData("abc", "base32")
	require.ErrorContains(t, err, "unsupported encoding")

	_, err = DecodeData("zz", "hex")
	require.Error(t, err)
}

func TestReadAll(t *testing.T) {
	input := strings.Join([]string{
		line(base64.StdEncoding.EncodeToString([]byte{1, 2, 3}), "", 10),
		"",
		"not json",
		line(hex.EncodeToString([]byte{4, 5}), "hex", 11),
		`{"owner":"bogus","data":""}`,
		line(base58.Encode([]byte{6}), "base58", 12),
	}, "\n")

	updates, bad, err := ReadAll(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, updates, 3)
	require.Len(t, bad, 2)
	require.Equal(t, 3, LineNumber(bad[0]))
	require.Equal(t, 5, LineNumber(bad[1]))
	require.Equal(t, errors.ErrCodeInvalidInput, bad[1].Code)
	require.ErrorContains(t, bad[1], "invalid owner")

	require.Equal(t, testAddress, updates[0].Address)
	require.Equal(t, testOwner, updates[0].Owner)
	require.Equal(t, []byte{1, 2, 3}, updates[0].Data)
	require.Equal(t, uint64(10), updates[0].Slot)
	require.Equal(t, uint64(7), updates[0].Lamports)
	require.Equal(t, []byte{4, 5}, updates[1].Data)
	require.Equal(t, []byte{6}, updates[2].Data)
}

func TestRecordWithoutAddress(t *testing.T) {
	rec := Record{Owner: testOwner.String(), Data: ""}
	u, err := rec.Update()
	require.NoError(t, err)
	require.True(t, u.Address.IsZero())
	require.Empty(t, u.Data)
}

func TestDatasourceConsume(t *testing.T) {
	input := strings.Join([]string{
		line(base64.StdEncoding.EncodeToString([]byte{1}), "", 1),
		"{",
		line(base64.StdEncoding.EncodeToString([]byte{2}), "", 2),
	}, "\n")

	lm := metrics.NewLogMetrics(nil)
	ch := make(chan datasource.UpdateWithSource, 4)
	id := datasource.NewNamedDatasourceID("replay")

	ds := NewReaderDatasource(strings.NewReader(input))
	require.Equal(t, []datasource.UpdateType{datasource.UpdateTypeAccount}, ds.UpdateTypes())
	require.NoError(t, ds.Consume(context.Background(), id, ch, metrics.NewCollection(lm)))
	close(ch)

	var slots []uint64
	for u := range ch {
		require.True(t, u.DatasourceID.Equals(id))
		require.Equal(t, testOwner, u.Update.Account.Account.Owner)
		slots = append(slots, u.Update.Account.Slot)
	}
	require.Equal(t, []uint64{1, 2}, slots)
	require.Equal(t, uint64(2), lm.Counter(MetricReplayLines))
	require.Equal(t, uint64(1), lm.Counter(MetricReplayInvalidLine))
}

func TestDatasourceConsumeCancelled(t *testing.T) {
	input := line(base64.StdEncoding.EncodeToString([]byte{1}), "", 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ds := NewReaderDatasource(strings.NewReader(input))
	err := ds.Consume(ctx, datasource.NewUniqueDatasourceID(), make(chan datasource.UpdateWithSource), metrics.NewCollection())
	require.ErrorIs(t, err, context.Canceled)
}

func TestFileDatasourceMissing(t *testing.T) {
	ds := NewFileDatasource("/nonexistent/replay.jsonl")
	err := ds.Consume(context.Background(), datasource.NewUniqueDatasourceID(), make(chan datasource.UpdateWithSource), metrics.NewCollection())
	require.Error(t, err)
}
