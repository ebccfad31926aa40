package meteora

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
)

const (
	// PoolSize is the dynamic AMM pool account size.
	PoolSize = 944

	poolPadding0Size = 24
	poolPaddingSize  = 6 + 21*8 + 21*8
	poolReservedSize = 19
)

// PoolPolicy requires the exact dynamic AMM pool size.
var PoolPolicy = layout.Exact(PoolSize)

// PoolType is the raw pool type code.
type PoolType uint8

const (
	PoolTypePermissioned PoolType = iota
	PoolTypePermissionless
)

func (t PoolType) String() string {
	switch t {
	case PoolTypePermissioned:
		return "Permissioned"
	case PoolTypePermissionless:
		return "Permissionless"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// CurveType is the raw curve type code.
type CurveType uint8

const (
	CurveTypeConstantProduct CurveType = iota
	CurveTypeStable
)

func (t CurveType) String() string {
	switch t {
	case CurveTypeConstantProduct:
		return "ConstantProduct"
	case CurveTypeStable:
		return "Stable"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// PoolFees are the trade and protocol fee fractions.
type PoolFees struct {
	TradeFeeNumerator           uint64 `json:"trade_fee_numerator"`
	TradeFeeDenominator         uint64 `json:"trade_fee_denominator"`
	ProtocolTradeFeeNumerator   uint64 `json:"protocol_trade_fee_numerator"`
	ProtocolTradeFeeDenominator uint64 `json:"protocol_trade_fee_denominator"`
}

// Bootstrapping holds the pool activation settings.
type Bootstrapping struct {
	ActivationPoint  uint64           `json:"activation_point"`
	WhitelistedVault solana.PublicKey `json:"whitelisted_vault"`
	PoolCreator      solana.PublicKey `json:"pool_creator"`
	ActivationType   uint8            `json:"activation_type"`
}

// PartnerInfo holds the partner fee share and its pending amounts.
type PartnerInfo struct {
	FeeNumerator     uint64           `json:"fee_numerator"`
	PartnerAuthority solana.PublicKey `json:"partner_authority"`
	PendingFeeA      uint64           `json:"pending_fee_a"`
	PendingFeeB      uint64           `json:"pending_fee_b"`
}

// TokenMultiplier scales token amounts to a common precision.
type TokenMultiplier struct {
	TokenAMultiplier uint64 `json:"token_a_multiplier"`
	TokenBMultiplier uint64 `json:"token_b_multiplier"`
	PrecisionFactor  uint8  `json:"precision_factor"`
}

// Depeg holds the depeg tracking state of a stable curve.
type Depeg struct {
	BaseVirtualPrice uint64 `json:"base_virtual_price"`
	BaseCacheUpdated uint64 `json:"base_cache_updated"`
	DepegType        uint8  `json:"depeg_type"`
}

// StableCurve holds the parameters carried by a stable curve.
type StableCurve struct {
	Amp                     uint64          `json:"amp"`
	TokenMultiplier         TokenMultiplier `json:"token_multiplier"`
	Depeg                   Depeg           `json:"depeg"`
	LastAmpUpdatedTimestamp uint64          `json:"last_amp_updated_timestamp"`
}

// Pool is a dynamic AMM pool account.
type Pool struct {
	LpMint            solana.PublicKey `json:"lp_mint"`
	TokenAMint        solana.PublicKey `json:"token_a_mint"`
	TokenBMint        solana.PublicKey `json:"token_b_mint"`
	AVault            solana.PublicKey `json:"a_vault"`
	BVault            solana.PublicKey `json:"b_vault"`
	AVaultLp          solana.PublicKey `json:"a_vault_lp"`
	BVaultLp          solana.PublicKey `json:"b_vault_lp"`
	AVaultLpBump      uint8            `json:"a_vault_lp_bump"`
	Enabled           bool             `json:"enabled"`
	ProtocolTokenAFee solana.PublicKey `json:"protocol_token_a_fee"`
	ProtocolTokenBFee solana.PublicKey `json:"protocol_token_b_fee"`
	FeeLastUpdatedAt  uint64           `json:"fee_last_updated_at"`
	Fees              PoolFees         `json:"fees"`
	PoolType          PoolType         `json:"pool_type"`
	Stake             solana.PublicKey `json:"stake"`
	TotalLockedLp     uint64           `json:"total_locked_lp"`
	Bootstrapping     Bootstrapping    `json:"bootstrapping"`
	PartnerInfo       PartnerInfo      `json:"partner_info"`
	CurveType         CurveType        `json:"curve_type"`

	// Stable is set only when CurveType is CurveTypeStable.
	Stable *StableCurve `json:"stable,omitempty"`
}

// Schema implements layout.Record.
func (*Pool) Schema() layout.SchemaID { return layout.SchemaMeteoraPool }

// DecodePool decodes a dynamic AMM pool account.
func DecodePool(data []byte) (*Pool, error) {
	r, err := layout.Open(layout.SchemaMeteoraPool, PoolPolicy, data, layout.DiscriminatorSize)
	if err != nil {
		return nil, err
	}

	p := &Pool{
		LpMint:     r.Key(),
		TokenAMint: r.Key(),
		TokenBMint: r.Key(),
		AVault:     r.Key(),
		BVault:     r.Key(),
		AVaultLp:   r.Key(),
		BVaultLp:   r.Key(),
	}
	p.AVaultLpBump = r.U8()
	p.Enabled = r.Bool()
	p.ProtocolTokenAFee = r.Key()
	p.ProtocolTokenBFee = r.Key()
	p.FeeLastUpdatedAt = r.U64()
	r.Skip(poolPadding0Size)

	p.Fees = PoolFees{
		TradeFeeNumerator:           r.U64(),
		TradeFeeDenominator:         r.U64(),
		ProtocolTradeFeeNumerator:   r.U64(),
		ProtocolTradeFeeDenominator: r.U64(),
	}
	p.PoolType = PoolType(r.U8())
	p.Stake = r.Key()
	p.TotalLockedLp = r.U64()
	p.Bootstrapping = Bootstrapping{
		ActivationPoint:  r.U64(),
		WhitelistedVault: r.Key(),
		PoolCreator:      r.Key(),
		ActivationType:   r.U8(),
	}
	p.PartnerInfo = PartnerInfo{
		FeeNumerator:     r.U64(),
		PartnerAuthority: r.Key(),
		PendingFeeA:      r.U64(),
		PendingFeeB:      r.U64(),
	}
	r.Skip(poolPaddingSize)

	// The stable parameters occupy the same bytes whatever the curve code,
	// so they are always consumed to keep the reserved tail aligned.
	p.CurveType = CurveType(r.U8())
	stable := readStableCurve(r)
	if p.CurveType == CurveTypeStable {
		p.Stable = &stable
	}
	r.Skip(poolReservedSize)

	if err := r.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

func readStableCurve(r *layout.Reader) StableCurve {
	return StableCurve{
		Amp: r.U64(),
		TokenMultiplier: TokenMultiplier{
			TokenAMultiplier: r.U64(),
			TokenBMultiplier: r.U64(),
			PrecisionFactor:  r.U8(),
		},
		Depeg: Depeg{
			BaseVirtualPrice: r.U64(),
			BaseCacheUpdated: r.U64(),
			DepegType:        r.U8(),
		},
		LastAmpUpdatedTimestamp: r.U64(),
	}
}
