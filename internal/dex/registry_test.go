package dex

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/lugondev/go-carbon-dex/internal/config"
	"github.com/lugondev/go-carbon-dex/internal/decoder/meteora"
	"github.com/lugondev/go-carbon-dex/internal/decoder/pump"
	"github.com/lugondev/go-carbon-dex/internal/decoder/raydium"
	"github.com/lugondev/go-carbon-dex/internal/decoder/solfi"
	"github.com/lugondev/go-carbon-dex/internal/testutil"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
	"github.com/lugondev/go-carbon-dex/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestDispatchByOwnerAndLength(t *testing.T) {
	d, err := NewDispatcher(DefaultOptions())
	require.NoError(t, err)

	tests := []struct {
		name  string
		owner solana.PublicKey
		size  int
		want  layout.SchemaID
	}{
		{"pump minimum", pump.ProgramID, pump.PoolSize, layout.SchemaPumpPool},
		{"pump extended", pump.ProgramID, 300, layout.SchemaPumpPool},
		{"amm v4 pool", raydium.AmmV4ProgramID, raydium.AmmV4PoolSize, layout.SchemaRaydiumAmmV4Pool},
		{"amm v4 market", raydium.AmmV4ProgramID, raydium.MarketSize, layout.SchemaRaydiumMarket},
		{"openbook market", raydium.OpenBookProgramID, raydium.MarketSize, layout.SchemaRaydiumMarket},
		{"serum market", raydium.SerumV3ProgramID, raydium.MarketSize, layout.SchemaRaydiumMarket},
		{"cpmm", raydium.CpmmProgramID, raydium.CpmmPoolSize, layout.SchemaRaydiumCpmmPool},
		{"clmm", raydium.ClmmProgramID, raydium.ClmmPoolSize, layout.SchemaRaydiumClmmPool},
		{"solfi", solfi.ProgramID, solfi.PoolSize, layout.SchemaSolFiPool},
		{"dlmm", meteora.DlmmProgramID, meteora.DlmmPoolSize, layout.SchemaMeteoraDlmmPool},
		{"oracle", meteora.DlmmProgramID, meteora.OracleSize, layout.SchemaMeteoraOracle},
		{"bin array", meteora.DlmmProgramID, meteora.BinArraySize, layout.SchemaMeteoraBinArray},
		{"pools", meteora.PoolsProgramID, meteora.PoolSize, layout.SchemaMeteoraPool},
		{"unknown owner clmm size", solana.SystemProgramID, raydium.ClmmPoolSize, layout.SchemaRaydiumClmmPool},
		{"unknown owner bin array size", solana.SystemProgramID, meteora.BinArraySize, layout.SchemaMeteoraBinArray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := d.Decode(tt.owner, testutil.Pattern(tt.size, uint32(tt.size)))
			require.NoError(t, err)
			require.Equal(t, tt.want, rec.Schema())
		})
	}
}

func TestDispatchUnknownShape(t *testing.T) {
	d, err := NewDispatcher(DefaultOptions())
	require.NoError(t, err)

	tests := []struct {
		name  string
		owner solana.PublicKey
		size  int
	}{
		{"legacy pool one byte short", raydium.AmmV4ProgramID, raydium.AmmV4PoolSize - 1},
		{"shared size without owner", solana.SystemProgramID, 904},
		{"unsupported size without owner", solana.SystemProgramID, 1000},
		{"exact schema wrong size", raydium.ClmmProgramID, raydium.ClmmPoolSize + 1},
		{"pump too short", pump.ProgramID, pump.PoolSize - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := d.Decode(tt.owner, make([]byte, tt.size))
			require.Nil(t, rec)
			require.ErrorIs(t, err, layout.ErrUnknownShape)
		})
	}
}

func TestLegacyPoolLengthMismatchAndDispatch(t *testing.T) {
	data := make([]byte, 751)

	_, err := raydium.DecodeAmmV4Pool(data)
	var de *layout.DecodeError
	require.True(t, errors.As(err, &de))
	require.Equal(t, layout.KindLengthMismatch, de.Kind)
	require.Equal(t, 752, de.Expected)
	require.Equal(t, 751, de.Actual)

	d, err := NewDispatcher(DefaultOptions())
	require.NoError(t, err)
	_, err = d.Decode(raydium.AmmV4ProgramID, data)
	require.ErrorIs(t, err, layout.ErrUnknownShape)
}

func TestDlmmLayoutOption(t *testing.T) {
	d, err := NewDispatcher(Options{DlmmLayout: config.DlmmLayoutNoOracle})
	require.NoError(t, err)

	rec, err := d.Decode(meteora.DlmmProgramID, make([]byte, meteora.DlmmPoolSize))
	require.NoError(t, err)
	require.IsType(t, &meteora.DlmmPoolNoOracle{}, rec)

	_, ok := d.Registry().Lookup(layout.SchemaMeteoraDlmmPool)
	require.False(t, ok)

	_, err = NewRegistry(Options{DlmmLayout: "v2"})
	require.Error(t, err)

	require.Equal(t, config.DlmmLayoutNoOracle, OptionsFromConfig(config.DecoderConfig{DlmmLayout: "no_oracle"}).DlmmLayout)
}

func TestRegistryCoversEveryLayout(t *testing.T) {
	reg, err := NewRegistry(DefaultOptions())
	require.NoError(t, err)

	ids := make(map[layout.SchemaID]bool)
	for _, s := range reg.Schemas() {
		ids[s.ID] = true
	}
	for _, id := range layout.Schemas() {
		if id == layout.SchemaMeteoraDlmmPoolNoOracle {
			continue
		}
		require.True(t, ids[id], "missing %s", id)
	}
}

func TestDispatchIsStateless(t *testing.T) {
	d, err := NewDispatcher(DefaultOptions())
	require.NoError(t, err)
	data := testutil.Pattern(meteora.OracleSize, 99)

	first, err := d.Decode(meteora.DlmmProgramID, data)
	require.NoError(t, err)
	// An unrelated failure in between must not affect the next decode.
	_, err = d.Decode(solana.SystemProgramID, make([]byte, 904))
	require.Error(t, err)
	second, err := d.Decode(meteora.DlmmProgramID, data)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestDecodeBatchMixed(t *testing.T) {
	d, err := NewDispatcher(DefaultOptions())
	require.NoError(t, err)

	updates := []types.RawAccountUpdate{
		{Owner: pump.ProgramID, Data: make([]byte, pump.PoolSize)},
		{Owner: raydium.AmmV4ProgramID, Data: make([]byte, 751)},
		{Owner: meteora.DlmmProgramID, Data: make([]byte, meteora.BinArraySize)},
		{Owner: solana.SystemProgramID, Data: make([]byte, 904)},
	}

	res, err := d.DecodeBatch(context.Background(), updates, 2)
	require.NoError(t, err)
	require.Equal(t, layout.SchemaPumpPool, res.Records[0].Schema())
	require.ErrorIs(t, res.Errors[1], layout.ErrUnknownShape)
	require.Len(t, res.Records[2].(*meteora.BinArray).Bins, meteora.BinsPerArray)
	require.ErrorIs(t, res.Errors[3], layout.ErrUnknownShape)
	require.Equal(t, 2, res.Decoded())
	require.Equal(t, 2, res.Failed())
}
