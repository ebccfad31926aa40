package raydium

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
)

const (
	// ClmmPoolSize is the CLMM PoolState account size.
	ClmmPoolSize = 1544

	// ClmmRewardCount is the number of reward slots in a CLMM pool.
	ClmmRewardCount = 3

	// ClmmTickArrayBitmapWords is the length of the default tick array bitmap.
	ClmmTickArrayBitmapWords = 16

	clmmStatePaddingSize     = 4      // padding3, padding4
	clmmFeeGrowthGlobalSize  = 2 * 16 // fee_growth_global_0/1_x64
	clmmSwapAccumulatorsSize = 4 * 16 // swap in/out amounts per token
	clmmStatusPaddingSize    = 7
	clmmReservedSize         = (24 + 32) * 8 // padding1, padding2
)

// ClmmPoolPolicy requires the exact CLMM pool size.
var ClmmPoolPolicy = layout.Exact(ClmmPoolSize)

// ClmmState is the concentrated-liquidity pool core: everything from the
// AMM config key through the status byte.
type ClmmState struct {
	AmmConfig          solana.PublicKey `json:"amm_config"`
	Owner              solana.PublicKey `json:"owner"`
	TokenMint0         solana.PublicKey `json:"token_mint_0"`
	TokenMint1         solana.PublicKey `json:"token_mint_1"`
	TokenVault0        solana.PublicKey `json:"token_vault_0"`
	TokenVault1        solana.PublicKey `json:"token_vault_1"`
	ObservationKey     solana.PublicKey `json:"observation_key"`
	MintDecimals0      uint8            `json:"mint_decimals_0"`
	MintDecimals1      uint8            `json:"mint_decimals_1"`
	TickSpacing        uint16           `json:"tick_spacing"`
	Liquidity          bin.Uint128      `json:"liquidity"`
	SqrtPriceX64       bin.Uint128      `json:"sqrt_price_x64"`
	TickCurrent        int32            `json:"tick_current"`
	ProtocolFeesToken0 uint64           `json:"protocol_fees_token_0"`
	ProtocolFeesToken1 uint64           `json:"protocol_fees_token_1"`
	Status             uint8            `json:"status"`
}

// ReadClmmState reads a ClmmState at the reader's cursor. The fee growth
// and swap accumulator regions are skipped.
func ReadClmmState(r *layout.Reader) ClmmState {
	s := ClmmState{
		AmmConfig:      r.Key(),
		Owner:          r.Key(),
		TokenMint0:     r.Key(),
		TokenMint1:     r.Key(),
		TokenVault0:    r.Key(),
		TokenVault1:    r.Key(),
		ObservationKey: r.Key(),
		MintDecimals0:  r.U8(),
		MintDecimals1:  r.U8(),
		TickSpacing:    r.U16(),
		Liquidity:      r.U128(),
		SqrtPriceX64:   r.U128(),
		TickCurrent:    r.I32(),
	}
	r.Skip(clmmStatePaddingSize)
	r.Skip(clmmFeeGrowthGlobalSize)
	s.ProtocolFeesToken0 = r.U64()
	s.ProtocolFeesToken1 = r.U64()
	r.Skip(clmmSwapAccumulatorsSize)
	s.Status = r.U8()
	return s
}

// ClmmRewardInfo is one CLMM reward slot.
type ClmmRewardInfo struct {
	RewardState           uint8            `json:"reward_state"`
	OpenTime              uint64           `json:"open_time"`
	EndTime               uint64           `json:"end_time"`
	LastUpdateTime        uint64           `json:"last_update_time"`
	EmissionsPerSecondX64 bin.Uint128      `json:"emissions_per_second_x64"`
	RewardTotalEmissioned uint64           `json:"reward_total_emissioned"`
	RewardClaimed         uint64           `json:"reward_claimed"`
	TokenMint             solana.PublicKey `json:"token_mint"`
	TokenVault            solana.PublicKey `json:"token_vault"`
	Authority             solana.PublicKey `json:"authority"`
	RewardGrowthGlobalX64 bin.Uint128      `json:"reward_growth_global_x64"`
}

func readClmmRewardInfo(r *layout.Reader) ClmmRewardInfo {
	return ClmmRewardInfo{
		RewardState:           r.U8(),
		OpenTime:              r.U64(),
		EndTime:               r.U64(),
		LastUpdateTime:        r.U64(),
		EmissionsPerSecondX64: r.U128(),
		RewardTotalEmissioned: r.U64(),
		RewardClaimed:         r.U64(),
		TokenMint:             r.Key(),
		TokenVault:            r.Key(),
		Authority:             r.Key(),
		RewardGrowthGlobalX64: r.U128(),
	}
}

// ClmmPool is a Raydium CLMM pool account.
type ClmmPool struct {
	Bump uint8 `json:"bump"`
	ClmmState

	RewardInfos     [ClmmRewardCount]ClmmRewardInfo  `json:"reward_infos"`
	TickArrayBitmap [ClmmTickArrayBitmapWords]uint64 `json:"tick_array_bitmap"`

	TotalFeesToken0        uint64 `json:"total_fees_token_0"`
	TotalFeesClaimedToken0 uint64 `json:"total_fees_claimed_token_0"`
	TotalFeesToken1        uint64 `json:"total_fees_token_1"`
	TotalFeesClaimedToken1 uint64 `json:"total_fees_claimed_token_1"`
	FundFeesToken0         uint64 `json:"fund_fees_token_0"`
	FundFeesToken1         uint64 `json:"fund_fees_token_1"`
	OpenTime               uint64 `json:"open_time"`
	RecentEpoch            uint64 `json:"recent_epoch"`
}

// Schema implements layout.Record.
func (*ClmmPool) Schema() layout.SchemaID { return layout.SchemaRaydiumClmmPool }

// DecodeClmmPool decodes a Raydium CLMM pool account.
func DecodeClmmPool(data []byte) (*ClmmPool, error) {
	r, err := layout.Open(layout.SchemaRaydiumClmmPool, ClmmPoolPolicy, data, layout.DiscriminatorSize)
	if err != nil {
		return nil, err
	}

	p := &ClmmPool{Bump: r.U8()}
	p.ClmmState = ReadClmmState(r)
	r.Skip(clmmStatusPaddingSize)

	for i := range p.RewardInfos {
		p.RewardInfos[i] = readClmmRewardInfo(r)
	}
	for i := range p.TickArrayBitmap {
		p.TickArrayBitmap[i] = r.U64()
	}

	p.TotalFeesToken0 = r.U64()
	p.TotalFeesClaimedToken0 = r.U64()
	p.TotalFeesToken1 = r.U64()
	p.TotalFeesClaimedToken1 = r.U64()
	p.FundFeesToken0 = r.U64()
	p.FundFeesToken1 = r.U64()
	p.OpenTime = r.U64()
	p.RecentEpoch = r.U64()
	r.Skip(clmmReservedSize)

	if err := r.Err(); err != nil {
		return nil, err
	}
	return p, nil
}
