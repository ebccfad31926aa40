// Package pump decodes Pump AMM pool accounts.
package pump

import (
	"github.com/gagliardetto/solana-go"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
)

// ProgramID is the Pump AMM program.
var ProgramID = solana.MustPublicKeyFromBase58("pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA")

const (
	// PoolSize is the smallest pool account: discriminator, bump, index and six keys.
	PoolSize = 203

	poolWithLpSupplySize    = PoolSize + 8
	poolWithCoinCreatorSize = poolWithLpSupplySize + layout.KeySize
)

// PoolPolicy accepts pools created before and after the lp_supply and
// coin_creator fields were appended.
var PoolPolicy = layout.AtLeast(PoolSize)

// Pool is a Pump AMM pool account.
type Pool struct {
	Discriminator         uint64           `json:"discriminator"`
	PoolBump              uint8            `json:"pool_bump"`
	Index                 uint16           `json:"index"`
	Creator               solana.PublicKey `json:"creator"`
	BaseMint              solana.PublicKey `json:"base_mint"`
	QuoteMint             solana.PublicKey `json:"quote_mint"`
	LpMint                solana.PublicKey `json:"lp_mint"`
	PoolBaseTokenAccount  solana.PublicKey `json:"pool_base_token_account"`
	PoolQuoteTokenAccount solana.PublicKey `json:"pool_quote_token_account"`

	// LpSupply is present on accounts of at least 211 bytes.
	LpSupply *uint64 `json:"lp_supply,omitempty"`

	// CoinCreator is present on accounts of at least 243 bytes.
	CoinCreator *solana.PublicKey `json:"coin_creator,omitempty"`
}

// Schema implements layout.Record.
func (*Pool) Schema() layout.SchemaID { return layout.SchemaPumpPool }

// DecodePool decodes a Pump AMM pool account.
func DecodePool(data []byte) (*Pool, error) {
	r, err := layout.Open(layout.SchemaPumpPool, PoolPolicy, data, layout.NoDiscriminator)
	if err != nil {
		return nil, err
	}

	p := &Pool{
		Discriminator:         r.U64(),
		PoolBump:              r.U8(),
		Index:                 r.U16(),
		Creator:               r.Key(),
		BaseMint:              r.Key(),
		QuoteMint:             r.Key(),
		LpMint:                r.Key(),
		PoolBaseTokenAccount:  r.Key(),
		PoolQuoteTokenAccount: r.Key(),
	}

	if len(data) >= poolWithLpSupplySize {
		supply := r.U64()
		p.LpSupply = &supply
	}
	if len(data) >= poolWithCoinCreatorSize {
		creator := r.Key()
		p.CoinCreator = &creator
	}

	if err := r.Err(); err != nil {
		return nil, err
	}
	return p, nil
}
