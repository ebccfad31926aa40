package raydium

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
)

const (
	// AmmV4PoolSize is the AMM v4 AmmInfo account size.
	AmmV4PoolSize = 752

	// AmmV4KeysOffset is where the nine vault/mint/market keys start.
	AmmV4KeysOffset = 336

	ammV4ReservedSize = 24
)

// AmmV4PoolPolicy is a minimum: AMM v4 pool accounts are checked with >=.
var AmmV4PoolPolicy = layout.AtLeast(AmmV4PoolSize)

// AmmV4Fees holds the fee and PnL ratios of an AMM v4 pool.
type AmmV4Fees struct {
	MinSeparateNumerator   uint64 `json:"min_separate_numerator"`
	MinSeparateDenominator uint64 `json:"min_separate_denominator"`
	TradeFeeNumerator      uint64 `json:"trade_fee_numerator"`
	TradeFeeDenominator    uint64 `json:"trade_fee_denominator"`
	PnlNumerator           uint64 `json:"pnl_numerator"`
	PnlDenominator         uint64 `json:"pnl_denominator"`
	SwapFeeNumerator       uint64 `json:"swap_fee_numerator"`
	SwapFeeDenominator     uint64 `json:"swap_fee_denominator"`
}

// AmmV4OutPut holds the cumulative PnL and swap counters of an AMM v4 pool.
type AmmV4OutPut struct {
	BaseNeedTakePnl     uint64      `json:"base_need_take_pnl"`
	QuoteNeedTakePnl    uint64      `json:"quote_need_take_pnl"`
	QuoteTotalPnl       uint64      `json:"quote_total_pnl"`
	BaseTotalPnl        uint64      `json:"base_total_pnl"`
	PoolOpenTime        uint64      `json:"pool_open_time"`
	PunishPcAmount      uint64      `json:"punish_pc_amount"`
	PunishCoinAmount    uint64      `json:"punish_coin_amount"`
	OrderbookToInitTime uint64      `json:"orderbook_to_init_time"`
	SwapBaseInAmount    bin.Uint128 `json:"swap_base_in_amount"`
	SwapQuoteOutAmount  bin.Uint128 `json:"swap_quote_out_amount"`
	SwapBase2QuoteFee   uint64      `json:"swap_base2quote_fee"`
	SwapQuoteInAmount   bin.Uint128 `json:"swap_quote_in_amount"`
	SwapBaseOutAmount   bin.Uint128 `json:"swap_base_out_amount"`
	SwapQuote2BaseFee   uint64      `json:"swap_quote2base_fee"`
}

// AmmV4Pool is a Raydium AMM v4 pool (AmmInfo) account.
type AmmV4Pool struct {
	Status             uint64 `json:"status"`
	Nonce              uint64 `json:"nonce"`
	MaxOrder           uint64 `json:"max_order"`
	Depth              uint64 `json:"depth"`
	BaseDecimal        uint64 `json:"base_decimal"`
	QuoteDecimal       uint64 `json:"quote_decimal"`
	State              uint64 `json:"state"`
	ResetFlag          uint64 `json:"reset_flag"`
	MinSize            uint64 `json:"min_size"`
	VolMaxCutRatio     uint64 `json:"vol_max_cut_ratio"`
	AmountWaveRatio    uint64 `json:"amount_wave_ratio"`
	BaseLotSize        uint64 `json:"base_lot_size"`
	QuoteLotSize       uint64 `json:"quote_lot_size"`
	MinPriceMultiplier uint64 `json:"min_price_multiplier"`
	MaxPriceMultiplier uint64 `json:"max_price_multiplier"`
	SystemDecimalValue uint64 `json:"system_decimal_value"`

	Fees   AmmV4Fees   `json:"fees"`
	OutPut AmmV4OutPut `json:"out_put"`

	BaseVault       solana.PublicKey `json:"base_vault"`
	QuoteVault      solana.PublicKey `json:"quote_vault"`
	BaseMint        solana.PublicKey `json:"base_mint"`
	QuoteMint       solana.PublicKey `json:"quote_mint"`
	LpMint          solana.PublicKey `json:"lp_mint"`
	OpenOrders      solana.PublicKey `json:"open_orders"`
	MarketID        solana.PublicKey `json:"market_id"`
	MarketProgramID solana.PublicKey `json:"market_program_id"`
	TargetOrders    solana.PublicKey `json:"target_orders"`
	WithdrawQueue   solana.PublicKey `json:"withdraw_queue"`
	LpVault         solana.PublicKey `json:"lp_vault"`
	Owner           solana.PublicKey `json:"owner"`

	LpReserve uint64 `json:"lp_reserve"`
}

// Schema implements layout.Record.
func (*AmmV4Pool) Schema() layout.SchemaID { return layout.SchemaRaydiumAmmV4Pool }

// DecodeAmmV4Pool decodes a Raydium AMM v4 pool account.
func DecodeAmmV4Pool(data []byte) (*AmmV4Pool, error) {
	r, err := layout.Open(layout.SchemaRaydiumAmmV4Pool, AmmV4PoolPolicy, data, layout.NoDiscriminator)
	if err != nil {
		return nil, err
	}

	p := &AmmV4Pool{
		Status:             r.U64(),
		Nonce:              r.U64(),
		MaxOrder:           r.U64(),
		Depth:              r.U64(),
		BaseDecimal:        r.U64(),
		QuoteDecimal:       r.U64(),
		State:              r.U64(),
		ResetFlag:          r.U64(),
		MinSize:            r.U64(),
		VolMaxCutRatio:     r.U64(),
		AmountWaveRatio:    r.U64(),
		BaseLotSize:        r.U64(),
		QuoteLotSize:       r.U64(),
		MinPriceMultiplier: r.U64(),
		MaxPriceMultiplier: r.U64(),
		SystemDecimalValue: r.U64(),
	}

	p.Fees = AmmV4Fees{
		MinSeparateNumerator:   r.U64(),
		MinSeparateDenominator: r.U64(),
		TradeFeeNumerator:      r.U64(),
		TradeFeeDenominator:    r.U64(),
		PnlNumerator:           r.U64(),
		PnlDenominator:         r.U64(),
		SwapFeeNumerator:       r.U64(),
		SwapFeeDenominator:     r.U64(),
	}

	p.OutPut = AmmV4OutPut{
		BaseNeedTakePnl:     r.U64(),
		QuoteNeedTakePnl:    r.U64(),
		QuoteTotalPnl:       r.U64(),
		BaseTotalPnl:        r.U64(),
		PoolOpenTime:        r.U64(),
		PunishPcAmount:      r.U64(),
		PunishCoinAmount:    r.U64(),
		OrderbookToInitTime: r.U64(),
		SwapBaseInAmount:    r.U128(),
		SwapQuoteOutAmount:  r.U128(),
		SwapBase2QuoteFee:   r.U64(),
		SwapQuoteInAmount:   r.U128(),
		SwapBaseOutAmount:   r.U128(),
		SwapQuote2BaseFee:   r.U64(),
	}

	// r.Offset() == AmmV4KeysOffset here.
	p.BaseVault = r.Key()
	p.QuoteVault = r.Key()
	p.BaseMint = r.Key()
	p.QuoteMint = r.Key()
	p.LpMint = r.Key()
	p.OpenOrders = r.Key()
	p.MarketID = r.Key()
	p.MarketProgramID = r.Key()
	p.TargetOrders = r.Key()
	p.WithdrawQueue = r.Key()
	p.LpVault = r.Key()
	p.Owner = r.Key()
	p.LpReserve = r.U64()
	r.Skip(ammV4ReservedSize)

	if err := r.Err(); err != nil {
		return nil, err
	}
	return p, nil
}
