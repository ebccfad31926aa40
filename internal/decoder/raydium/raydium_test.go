package raydium

import (
	"errors"
	"testing"

	"github.com/lugondev/go-carbon-dex/internal/testutil"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
	"github.com/stretchr/testify/require"
)

func requireLengthMismatch(t *testing.T, err error, expected, actual int) {
	t.Helper()
	var de *layout.DecodeError
	require.True(t, errors.As(err, &de), "want DecodeError, got %v", err)
	require.Equal(t, layout.KindLengthMismatch, de.Kind)
	require.Equal(t, expected, de.Expected)
	require.Equal(t, actual, de.Actual)
}

func TestDecodeAmmV4Pool(t *testing.T) {
	b := testutil.NewBuilder(AmmV4PoolSize)
	for i := uint64(1); i <= 16; i++ {
		b.U64(i)
	}
	for i := uint64(101); i <= 108; i++ {
		b.U64(i)
	}
	b.U64(201).U64(202).U64(203).U64(204).U64(205).U64(206).U64(207).U64(208).
		U128(209, 1).U128(210, 2).U64(211).U128(212, 3).U128(213, 4).U64(214)
	require.Equal(t, AmmV4KeysOffset, b.Offset())
	for i := byte(1); i <= 12; i++ {
		b.Key(testutil.Key(i))
	}
	b.U64(999)

	p, err := DecodeAmmV4Pool(b.Bytes())
	require.NoError(t, err)

	require.Equal(t, uint64(1), p.Status)
	require.Equal(t, uint64(5), p.BaseDecimal)
	require.Equal(t, uint64(16), p.SystemDecimalValue)
	require.Equal(t, uint64(101), p.Fees.MinSeparateNumerator)
	require.Equal(t, uint64(108), p.Fees.SwapFeeDenominator)
	require.Equal(t, uint64(205), p.OutPut.PoolOpenTime)
	require.Equal(t, uint64(209), p.OutPut.SwapBaseInAmount.Lo)
	require.Equal(t, uint64(1), p.OutPut.SwapBaseInAmount.Hi)
	require.Equal(t, uint64(213), p.OutPut.SwapBaseOutAmount.Lo)
	require.Equal(t, uint64(214), p.OutPut.SwapQuote2BaseFee)
	require.Equal(t, testutil.Key(1), p.BaseVault)
	require.Equal(t, testutil.Key(3), p.BaseMint)
	require.Equal(t, testutil.Key(7), p.MarketID)
	require.Equal(t, testutil.Key(12), p.Owner)
	require.Equal(t, uint64(999), p.LpReserve)
}

func TestDecodeAmmV4PoolLength(t *testing.T) {
	_, err := DecodeAmmV4Pool(make([]byte, AmmV4PoolSize-1))
	requireLengthMismatch(t, err, AmmV4PoolSize, AmmV4PoolSize-1)

	_, err = DecodeAmmV4Pool(make([]byte, AmmV4PoolSize+16))
	require.NoError(t, err)
}

func TestDecodeMarket(t *testing.T) {
	b := testutil.NewBuilder(MarketSize).
		Raw([]byte("serum")).
		U64(3).Key(testutil.Key(1)).U64(4).
		Key(testutil.Key(2)).Key(testutil.Key(3)).Key(testutil.Key(4)).
		U64(10).U64(11).
		Key(testutil.Key(5)).U64(12).U64(13).U64(14).
		Key(testutil.Key(6)).Key(testutil.Key(7)).Key(testutil.Key(8)).Key(testutil.Key(9)).
		U64(100).U64(200).U64(25).U64(7)
	require.Equal(t, MarketSize-marketTailPaddingSize, b.Offset())

	m, err := DecodeMarket(b.Bytes())
	require.NoError(t, err)

	require.Equal(t, uint64(3), m.AccountFlags)
	require.Equal(t, testutil.Key(1), m.OwnAddress)
	require.Equal(t, uint64(4), m.VaultSignerNonce)
	require.Equal(t, testutil.Key(2), m.BaseMint)
	require.Equal(t, testutil.Key(3), m.QuoteMint)
	require.Equal(t, testutil.Key(5), m.QuoteVault)
	require.Equal(t, uint64(14), m.QuoteDustThreshold)
	require.Equal(t, testutil.Key(8), m.Bids)
	require.Equal(t, testutil.Key(9), m.Asks)
	require.Equal(t, uint64(100), m.BaseLotSize)
	require.Equal(t, uint64(7), m.ReferrerRebatesAccrued)
}

func TestDecodeMarketLength(t *testing.T) {
	_, err := DecodeMarket(make([]byte, MarketSize-1))
	requireLengthMismatch(t, err, MarketSize, MarketSize-1)
}

func TestDecodeCpmmPool(t *testing.T) {
	b := testutil.NewBuilder(CpmmPoolSize).U64(0xAA)
	for i := byte(1); i <= 10; i++ {
		b.Key(testutil.Key(i))
	}
	b.U8(250).U8(1).U8(9).U8(6).U8(9)
	for i := uint64(1); i <= 7; i++ {
		b.U64(i * 1000)
	}

	p, err := DecodeCpmmPool(b.Bytes())
	require.NoError(t, err)

	require.Equal(t, uint64(0xAA), p.Discriminator)
	require.Equal(t, testutil.Key(1), p.AmmConfig)
	require.Equal(t, testutil.Key(6), p.Token0Mint)
	require.Equal(t, testutil.Key(10), p.ObservationKey)
	require.Equal(t, uint8(250), p.AuthBump)
	require.Equal(t, uint8(6), p.Mint0Decimals)
	require.Equal(t, uint64(1000), p.LpSupply)
	require.Equal(t, uint64(7000), p.RecentEpoch)
}

func TestDecodeCpmmPoolLength(t *testing.T) {
	_, err := DecodeCpmmPool(make([]byte, CpmmPoolSize-1))
	requireLengthMismatch(t, err, CpmmPoolSize, CpmmPoolSize-1)
}

func clmmFixture() []byte {
	b := testutil.NewBuilder(ClmmPoolSize).Skip(layout.DiscriminatorSize).U8(253)
	for i := byte(1); i <= 7; i++ {
		b.Key(testutil.Key(i))
	}
	b.U8(9).U8(6).U16(60).
		U128(5000, 0).U128(1<<32, 1).
		I32(-120).
		Skip(clmmStatePaddingSize + clmmFeeGrowthGlobalSize).
		U64(11).U64(12).
		Skip(clmmSwapAccumulatorsSize).
		U8(1).
		Skip(clmmStatusPaddingSize)
	for i := 0; i < ClmmRewardCount; i++ {
		b.U8(uint8(i+1)).U64(100).U64(200).U64(150).U128(uint64(i), 0).U64(1).U64(2).
			Key(testutil.Key(byte(0x10 + i))).Key(testutil.Key(byte(0x20 + i))).Key(testutil.Key(byte(0x30 + i))).
			U128(0, uint64(i))
	}
	for i := uint64(0); i < ClmmTickArrayBitmapWords; i++ {
		b.U64(i)
	}
	for i := uint64(1); i <= 8; i++ {
		b.U64(i)
	}
	return b.Bytes()
}

func TestDecodeClmmPool(t *testing.T) {
	p, err := DecodeClmmPool(clmmFixture())
	require.NoError(t, err)

	require.Equal(t, uint8(253), p.Bump)
	require.Equal(t, testutil.Key(1), p.AmmConfig)
	require.Equal(t, testutil.Key(3), p.TokenMint0)
	require.Equal(t, testutil.Key(7), p.ObservationKey)
	require.Equal(t, uint16(60), p.TickSpacing)
	require.Equal(t, uint64(5000), p.Liquidity.Lo)
	require.Equal(t, uint64(1), p.SqrtPriceX64.Hi)
	require.Equal(t, int32(-120), p.TickCurrent)
	require.Equal(t, uint64(11), p.ProtocolFeesToken0)
	require.Equal(t, uint64(12), p.ProtocolFeesToken1)
	require.Equal(t, uint8(1), p.Status)

	for i, ri := range p.RewardInfos {
		require.Equal(t, uint8(i+1), ri.RewardState)
		require.Equal(t, testutil.Key(byte(0x10+i)), ri.TokenMint)
		require.Equal(t, testutil.Key(byte(0x30+i)), ri.Authority)
		require.Equal(t, uint64(i), ri.RewardGrowthGlobalX64.Hi)
	}
	require.Equal(t, uint64(15), p.TickArrayBitmap[15])
	require.Equal(t, uint64(1), p.TotalFeesToken0)
	require.Equal(t, uint64(8), p.RecentEpoch)
}

func TestDecodeClmmPoolLength(t *testing.T) {
	_, err := DecodeClmmPool(make([]byte, ClmmPoolSize-1))
	requireLengthMismatch(t, err, ClmmPoolSize, ClmmPoolSize-1)

	_, err = DecodeClmmPool(make([]byte, ClmmPoolSize+1))
	requireLengthMismatch(t, err, ClmmPoolSize, ClmmPoolSize+1)
}

func TestDecodersDeterministic(t *testing.T) {
	data := testutil.Pattern(ClmmPoolSize, 7)

	a, err := DecodeClmmPool(data)
	require.NoError(t, err)
	b, err := DecodeClmmPool(data)
	require.NoError(t, err)
	require.Equal(t, a, b)

	v4a, err := DecodeAmmV4Pool(data[:AmmV4PoolSize])
	require.NoError(t, err)
	v4b, err := DecodeAmmV4Pool(data[:AmmV4PoolSize])
	require.NoError(t, err)
	require.Equal(t, v4a, v4b)
}

func BenchmarkDecodeClmmPool(b *testing.B) {
	data := clmmFixture()
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := DecodeClmmPool(data); err != nil {
			b.Fatal(err)
		}
	}
}
