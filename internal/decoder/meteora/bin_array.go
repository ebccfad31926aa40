package meteora

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
)

const (
	// BinArraySize is the BinArray account size.
	BinArraySize = 10136

	// BinsPerArray is the fixed number of bins in a BinArray.
	BinsPerArray = 70

	// BinSize is the size of one bin record.
	BinSize = 144

	binArrayPaddingSize = 7
)

// BinArrayPolicy requires the exact BinArray size.
var BinArrayPolicy = layout.Exact(BinArraySize)

// Bin is one price bucket of a BinArray.
type Bin struct {
	AmountX                  uint64         `json:"amount_x"`
	AmountY                  uint64         `json:"amount_y"`
	Price                    bin.Uint128    `json:"price"`
	LiquiditySupply          bin.Uint128    `json:"liquidity_supply"`
	RewardPerTokenStored     [2]bin.Uint128 `json:"reward_per_token_stored"`
	FeeAmountXPerTokenStored bin.Uint128    `json:"fee_amount_x_per_token_stored"`
	FeeAmountYPerTokenStored bin.Uint128    `json:"fee_amount_y_per_token_stored"`
	AmountXIn                bin.Uint128    `json:"amount_x_in"`
	AmountYIn                bin.Uint128    `json:"amount_y_in"`
}

// BinArray is a DLMM bin array account.
type BinArray struct {
	Index   int64            `json:"index"`
	Version uint8            `json:"version"`
	LbPair  solana.PublicKey `json:"lb_pair"`
	Bins    []Bin            `json:"bins"`
}

// Schema implements layout.Record.
func (*BinArray) Schema() layout.SchemaID { return layout.SchemaMeteoraBinArray }

// DecodeBinArray decodes a DLMM bin array account. It always yields
// BinsPerArray bins.
func DecodeBinArray(data []byte) (*BinArray, error) {
	r, err := layout.Open(layout.SchemaMeteoraBinArray, BinArrayPolicy, data, layout.DiscriminatorSize)
	if err != nil {
		return nil, err
	}

	a := &BinArray{
		Index:   r.I64(),
		Version: r.U8(),
	}
	r.Skip(binArrayPaddingSize)
	a.LbPair = r.Key()

	a.Bins = make([]Bin, BinsPerArray)
	for i := range a.Bins {
		b := &a.Bins[i]
		b.AmountX = r.U64()
		b.AmountY = r.U64()
		b.Price = r.U128()
		b.LiquiditySupply = r.U128()
		b.RewardPerTokenStored[0] = r.U128()
		b.RewardPerTokenStored[1] = r.U128()
		b.FeeAmountXPerTokenStored = r.U128()
		b.FeeAmountYPerTokenStored = r.U128()
		b.AmountXIn = r.U128()
		b.AmountYIn = r.U128()
	}

	if err := r.Err(); err != nil {
		return nil, err
	}
	return a, nil
}
