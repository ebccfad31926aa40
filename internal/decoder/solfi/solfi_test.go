package solfi

import (
	"errors"
	"testing"

	"github.com/lugondev/go-carbon-dex/internal/testutil"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
	"github.com/stretchr/testify/require"
)

func TestDecodePool(t *testing.T) {
	b := testutil.NewBuilder(PoolSize).Skip(layout.DiscriminatorSize).U8(0xFF)
	for i := byte(1); i <= 7; i++ {
		b.Key(testutil.Key(i))
	}
	b.U8(6).U8(9).U16(1).
		U128(77, 0).U128(88, 0).
		I32(-5).
		Skip(4 + 32).
		U64(3).U64(4).
		Skip(64).
		U8(2)

	p, err := DecodePool(b.Bytes())
	require.NoError(t, err)

	require.Equal(t, testutil.Key(1), p.AmmConfig)
	require.Equal(t, testutil.Key(2), p.Owner)
	require.Equal(t, testutil.Key(7), p.ObservationKey)
	require.Equal(t, uint8(6), p.MintDecimals0)
	require.Equal(t, uint8(9), p.MintDecimals1)
	require.Equal(t, uint64(77), p.Liquidity.Lo)
	require.Equal(t, uint64(88), p.SqrtPriceX64.Lo)
	require.Equal(t, int32(-5), p.TickCurrent)
	require.Equal(t, uint64(3), p.ProtocolFeesToken0)
	require.Equal(t, uint64(4), p.ProtocolFeesToken1)
	require.Equal(t, uint8(2), p.Status)
	require.Equal(t, layout.SchemaSolFiPool, p.Schema())
}

func TestDecodePoolLength(t *testing.T) {
	for _, n := range []int{PoolSize - 1, PoolSize + 1} {
		_, err := DecodePool(make([]byte, n))

		var de *layout.DecodeError
		require.True(t, errors.As(err, &de))
		require.Equal(t, layout.KindLengthMismatch, de.Kind)
		require.Equal(t, PoolSize, de.Expected)
		require.Equal(t, n, de.Actual)
		require.False(t, de.AtLeast)
	}
}
