package raydium

import (
	"github.com/gagliardetto/solana-go"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
)

const (
	// MarketSize is the Serum/OpenBook v3 MarketState account size.
	MarketSize = 388

	marketHeadPaddingSize = 5
	marketTailPaddingSize = 7
)

// MarketPolicy is a minimum: market accounts are checked with >=.
var MarketPolicy = layout.AtLeast(MarketSize)

// Market is a Serum/OpenBook v3 market account as referenced by AMM v4 pools.
type Market struct {
	AccountFlags           uint64           `json:"account_flags"`
	OwnAddress             solana.PublicKey `json:"own_address"`
	VaultSignerNonce       uint64           `json:"vault_signer_nonce"`
	BaseMint               solana.PublicKey `json:"base_mint"`
	QuoteMint              solana.PublicKey `json:"quote_mint"`
	BaseVault              solana.PublicKey `json:"base_vault"`
	BaseDepositsTotal      uint64           `json:"base_deposits_total"`
	BaseFeesAccrued        uint64           `json:"base_fees_accrued"`
	QuoteVault             solana.PublicKey `json:"quote_vault"`
	QuoteDepositsTotal     uint64           `json:"quote_deposits_total"`
	QuoteFeesAccrued       uint64           `json:"quote_fees_accrued"`
	QuoteDustThreshold     uint64           `json:"quote_dust_threshold"`
	RequestQueue           solana.PublicKey `json:"request_queue"`
	EventQueue             solana.PublicKey `json:"event_queue"`
	Bids                   solana.PublicKey `json:"bids"`
	Asks                   solana.PublicKey `json:"asks"`
	BaseLotSize            uint64           `json:"base_lot_size"`
	QuoteLotSize           uint64           `json:"quote_lot_size"`
	FeeRateBps             uint64           `json:"fee_rate_bps"`
	ReferrerRebatesAccrued uint64           `json:"referrer_rebates_accrued"`
}

// Schema implements layout.Record.
func (*Market) Schema() layout.SchemaID { return layout.SchemaRaydiumMarket }

// DecodeMarket decodes a Serum/OpenBook v3 market account.
func DecodeMarket(data []byte) (*Market, error) {
	r, err := layout.Open(layout.SchemaRaydiumMarket, MarketPolicy, data, layout.NoDiscriminator)
	if err != nil {
		return nil, err
	}

	// "serum" head padding.
	r.Skip(marketHeadPaddingSize)

	m := &Market{
		AccountFlags:           r.U64(),
		OwnAddress:             r.Key(),
		VaultSignerNonce:       r.U64(),
		BaseMint:               r.Key(),
		QuoteMint:              r.Key(),
		BaseVault:              r.Key(),
		BaseDepositsTotal:      r.U64(),
		BaseFeesAccrued:        r.U64(),
		QuoteVault:             r.Key(),
		QuoteDepositsTotal:     r.U64(),
		QuoteFeesAccrued:       r.U64(),
		QuoteDustThreshold:     r.U64(),
		RequestQueue:           r.Key(),
		EventQueue:             r.Key(),
		Bids:                   r.Key(),
		Asks:                   r.Key(),
		BaseLotSize:            r.U64(),
		QuoteLotSize:           r.U64(),
		FeeRateBps:             r.U64(),
		ReferrerRebatesAccrued: r.U64(),
	}
	r.Skip(marketTailPaddingSize)

	if err := r.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
