package meteora

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
)

const (
	// DlmmPoolSize is the LbPair account size for both layouts.
	DlmmPoolSize = 904

	// DlmmRewardCount is the number of reward slots in an LbPair.
	DlmmRewardCount = 2

	// DlmmBinArrayBitmapWords is the length of the internal bin array bitmap.
	DlmmBinArrayBitmapWords = 16

	staticParametersPaddingSize = 5
	variableParametersPad0Size  = 4
	variableParametersPad1Size  = 8
	lbPairPadding1Size          = 32
	lbPairPadding2Size          = 32
	lbPairPadding3Size          = 8
	lbPairPadding4Size          = 8
	lbPairReservedSize          = 22
	lbPairNoOracleReservedSize  = 232
)

// Length policies for the two LbPair layouts. They share a size, so only one
// of them can be registered for the DLMM program at a time.
var (
	DlmmPoolPolicy         = layout.Exact(DlmmPoolSize)
	DlmmPoolNoOraclePolicy = layout.Exact(DlmmPoolSize)
)

// StaticParameters are the fee parameters fixed at pool creation.
type StaticParameters struct {
	BaseFactor               uint16 `json:"base_factor"`
	FilterPeriod             uint16 `json:"filter_period"`
	DecayPeriod              uint16 `json:"decay_period"`
	ReductionFactor          uint16 `json:"reduction_factor"`
	VariableFeeControl       uint32 `json:"variable_fee_control"`
	MaxVolatilityAccumulator uint32 `json:"max_volatility_accumulator"`
	MinBinID                 int32  `json:"min_bin_id"`
	MaxBinID                 int32  `json:"max_bin_id"`
	ProtocolShare            uint16 `json:"protocol_share"`
	BaseFeePowerFactor       uint8  `json:"base_fee_power_factor"`
}

func readStaticParameters(r *layout.Reader) StaticParameters {
	p := StaticParameters{
		BaseFactor:               r.U16(),
		FilterPeriod:             r.U16(),
		DecayPeriod:              r.U16(),
		ReductionFactor:          r.U16(),
		VariableFeeControl:       r.U32(),
		MaxVolatilityAccumulator: r.U32(),
		MinBinID:                 r.I32(),
		MaxBinID:                 r.I32(),
		ProtocolShare:            r.U16(),
		BaseFeePowerFactor:       r.U8(),
	}
	r.Skip(staticParametersPaddingSize)
	return p
}

// VariableParameters are the fee parameters updated on every swap.
type VariableParameters struct {
	VolatilityAccumulator uint32 `json:"volatility_accumulator"`
	VolatilityReference   uint32 `json:"volatility_reference"`
	IndexReference        int32  `json:"index_reference"`
	LastUpdateTimestamp   int64  `json:"last_update_timestamp"`
}

func readVariableParameters(r *layout.Reader) VariableParameters {
	p := VariableParameters{
		VolatilityAccumulator: r.U32(),
		VolatilityReference:   r.U32(),
		IndexReference:        r.I32(),
	}
	r.Skip(variableParametersPad0Size)
	p.LastUpdateTimestamp = r.I64()
	r.Skip(variableParametersPad1Size)
	return p
}

// ProtocolFee holds protocol fees accrued per token.
type ProtocolFee struct {
	AmountX uint64 `json:"amount_x"`
	AmountY uint64 `json:"amount_y"`
}

// DlmmRewardInfo is one LbPair reward slot.
type DlmmRewardInfo struct {
	Mint                                      solana.PublicKey `json:"mint"`
	Vault                                     solana.PublicKey `json:"vault"`
	Funder                                    solana.PublicKey `json:"funder"`
	RewardDuration                            uint64           `json:"reward_duration"`
	RewardDurationEnd                         uint64           `json:"reward_duration_end"`
	RewardRate                                bin.Uint128      `json:"reward_rate"`
	LastUpdateTime                            uint64           `json:"last_update_time"`
	CumulativeSecondsWithEmptyLiquidityReward uint64           `json:"cumulative_seconds_with_empty_liquidity_reward"`
}

// DlmmRewardInfoNoOracle is the reward slot of the older layout, which
// stores the reward rate in 64 bits.
type DlmmRewardInfoNoOracle struct {
	Mint                                      solana.PublicKey `json:"mint"`
	Vault                                     solana.PublicKey `json:"vault"`
	Funder                                    solana.PublicKey `json:"funder"`
	RewardDuration                            uint64           `json:"reward_duration"`
	RewardDurationEnd                         uint64           `json:"reward_duration_end"`
	RewardRate                                uint64           `json:"reward_rate"`
	LastUpdateTime                            uint64           `json:"last_update_time"`
	CumulativeSecondsWithEmptyLiquidityReward uint64           `json:"cumulative_seconds_with_empty_liquidity_reward"`
}

// LbPairHeader is the prefix common to both LbPair layouts.
type LbPairHeader struct {
	Parameters              StaticParameters   `json:"parameters"`
	VParameters             VariableParameters `json:"v_parameters"`
	BumpSeed                [1]uint8           `json:"bump_seed"`
	BinStepSeed             [2]uint8           `json:"bin_step_seed"`
	PairType                uint8              `json:"pair_type"`
	ActiveID                int32              `json:"active_id"`
	BinStep                 uint16             `json:"bin_step"`
	Status                  uint8              `json:"status"`
	RequireBaseFactorSeed   uint8              `json:"require_base_factor_seed"`
	BaseFactorSeed          [2]uint8           `json:"base_factor_seed"`
	ActivationType          uint8              `json:"activation_type"`
	CreatorPoolOnOffControl uint8              `json:"creator_pool_on_off_control"`
	TokenXMint              solana.PublicKey   `json:"token_x_mint"`
	TokenYMint              solana.PublicKey   `json:"token_y_mint"`
	ReserveX                solana.PublicKey   `json:"reserve_x"`
	ReserveY                solana.PublicKey   `json:"reserve_y"`
	ProtocolFee             ProtocolFee        `json:"protocol_fee"`
}

// readLbPairHeader reads the header and the padding that follows it.
func readLbPairHeader(r *layout.Reader) LbPairHeader {
	h := LbPairHeader{
		Parameters:  readStaticParameters(r),
		VParameters: readVariableParameters(r),
	}
	r.Bytes(h.BumpSeed[:])
	r.Bytes(h.BinStepSeed[:])
	h.PairType = r.U8()
	h.ActiveID = r.I32()
	h.BinStep = r.U16()
	h.Status = r.U8()
	h.RequireBaseFactorSeed = r.U8()
	r.Bytes(h.BaseFactorSeed[:])
	h.ActivationType = r.U8()
	h.CreatorPoolOnOffControl = r.U8()
	h.TokenXMint = r.Key()
	h.TokenYMint = r.Key()
	h.ReserveX = r.Key()
	h.ReserveY = r.Key()
	h.ProtocolFee = ProtocolFee{AmountX: r.U64(), AmountY: r.U64()}
	r.Skip(lbPairPadding1Size)
	return h
}

// DlmmPool is an LbPair account in the current layout, which carries an oracle.
type DlmmPool struct {
	LbPairHeader

	RewardInfos              [DlmmRewardCount]DlmmRewardInfo `json:"reward_infos"`
	Oracle                   solana.PublicKey                `json:"oracle"`
	BinArrayBitmap           [DlmmBinArrayBitmapWords]uint64 `json:"bin_array_bitmap"`
	LastUpdatedAt            int64                           `json:"last_updated_at"`
	PreActivationSwapAddress solana.PublicKey                `json:"pre_activation_swap_address"`
	BaseKey                  solana.PublicKey                `json:"base_key"`
	ActivationPoint          uint64                          `json:"activation_point"`
	PreActivationDuration    uint64                          `json:"pre_activation_duration"`
	Creator                  solana.PublicKey                `json:"creator"`
	TokenMintXProgramFlag    uint8                           `json:"token_mint_x_program_flag"`
	TokenMintYProgramFlag    uint8                           `json:"token_mint_y_program_flag"`
}

// Schema implements layout.Record.
func (*DlmmPool) Schema() layout.SchemaID { return layout.SchemaMeteoraDlmmPool }

// DecodeDlmmPool decodes an LbPair account in the current layout.
func DecodeDlmmPool(data []byte) (*DlmmPool, error) {
	r, err := layout.Open(layout.SchemaMeteoraDlmmPool, DlmmPoolPolicy, data, layout.DiscriminatorSize)
	if err != nil {
		return nil, err
	}

	p := &DlmmPool{LbPairHeader: readLbPairHeader(r)}
	for i := range p.RewardInfos {
		ri := &p.RewardInfos[i]
		ri.Mint = r.Key()
		ri.Vault = r.Key()
		ri.Funder = r.Key()
		ri.RewardDuration = r.U64()
		ri.RewardDurationEnd = r.U64()
		ri.RewardRate = r.U128()
		ri.LastUpdateTime = r.U64()
		ri.CumulativeSecondsWithEmptyLiquidityReward = r.U64()
	}
	p.Oracle = r.Key()
	for i := range p.BinArrayBitmap {
		p.BinArrayBitmap[i] = r.U64()
	}
	p.LastUpdatedAt = r.I64()
	r.Skip(lbPairPadding2Size)
	p.PreActivationSwapAddress = r.Key()
	p.BaseKey = r.Key()
	p.ActivationPoint = r.U64()
	p.PreActivationDuration = r.U64()
	r.Skip(lbPairPadding3Size)
	r.Skip(lbPairPadding4Size)
	p.Creator = r.Key()
	p.TokenMintXProgramFlag = r.U8()
	p.TokenMintYProgramFlag = r.U8()
	r.Skip(lbPairReservedSize)

	if err := r.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// DlmmPoolNoOracle is an LbPair account in the older layout without an
// oracle key and with 64-bit reward rates.
type DlmmPoolNoOracle struct {
	LbPairHeader

	RewardInfos    [DlmmRewardCount]DlmmRewardInfoNoOracle `json:"reward_infos"`
	BinArrayBitmap [DlmmBinArrayBitmapWords]uint64         `json:"bin_array_bitmap"`
	LastUpdatedAt  int64                                   `json:"last_updated_at"`
}

// Schema implements layout.Record.
func (*DlmmPoolNoOracle) Schema() layout.SchemaID { return layout.SchemaMeteoraDlmmPoolNoOracle }

// DecodeDlmmPoolNoOracle decodes an LbPair account in the older layout.
func DecodeDlmmPoolNoOracle(data []byte) (*DlmmPoolNoOracle, error) {
	r, err := layout.Open(layout.SchemaMeteoraDlmmPoolNoOracle, DlmmPoolNoOraclePolicy, data, layout.DiscriminatorSize)
	if err != nil {
		return nil, err
	}

	p := &DlmmPoolNoOracle{LbPairHeader: readLbPairHeader(r)}
	for i := range p.RewardInfos {
		ri := &p.RewardInfos[i]
		ri.Mint = r.Key()
		ri.Vault = r.Key()
		ri.Funder = r.Key()
		ri.RewardDuration = r.U64()
		ri.RewardDurationEnd = r.U64()
		ri.RewardRate = r.U64()
		ri.LastUpdateTime = r.U64()
		ri.CumulativeSecondsWithEmptyLiquidityReward = r.U64()
	}
	for i := range p.BinArrayBitmap {
		p.BinArrayBitmap[i] = r.U64()
	}
	p.LastUpdatedAt = r.I64()
	r.Skip(lbPairNoOracleReservedSize)

	if err := r.Err(); err != nil {
		return nil, err
	}
	return p, nil
}
