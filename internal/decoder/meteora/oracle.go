package meteora

import (
	"github.com/lugondev/go-carbon-dex/pkg/layout"
)

const (
	// OracleSize is the Oracle account size.
	OracleSize = 3232

	// OracleHeaderSize covers the discriminator and the idx, active_size and length fields.
	OracleHeaderSize = layout.DiscriminatorSize + 3*8

	// OracleBinSize is the size of one observation record.
	OracleBinSize = 32
)

// OraclePolicy requires the exact Oracle size and whole observation records after the header.
var OraclePolicy = layout.Exact(OracleSize).WithTail(OracleHeaderSize, OracleBinSize)

// OracleBin is one oracle observation record.
type OracleBin struct {
	AmountX   uint64 `json:"amount_x"`
	AmountY   uint64 `json:"amount_y"`
	Price     uint64 `json:"price"`
	Liquidity uint64 `json:"liquidity"`
}

// Oracle is a DLMM oracle account.
type Oracle struct {
	Idx        uint64      `json:"idx"`
	ActiveSize uint64      `json:"active_size"`
	Length     uint64      `json:"length"`
	Bins       []OracleBin `json:"bins"`
}

// Schema implements layout.Record.
func (*Oracle) Schema() layout.SchemaID { return layout.SchemaMeteoraOracle }

// DecodeOracle decodes a DLMM oracle account. Records are read until the
// buffer is exhausted.
func DecodeOracle(data []byte) (*Oracle, error) {
	r, err := layout.Open(layout.SchemaMeteoraOracle, OraclePolicy, data, layout.DiscriminatorSize)
	if err != nil {
		return nil, err
	}

	o := &Oracle{
		Idx:        r.U64(),
		ActiveSize: r.U64(),
		Length:     r.U64(),
	}

	o.Bins = make([]OracleBin, 0, OraclePolicy.Tail.Count(len(data)))
	for r.Err() == nil && r.Remaining() > 0 {
		o.Bins = append(o.Bins, OracleBin{
			AmountX:   r.U64(),
			AmountY:   r.U64(),
			Price:     r.U64(),
			Liquidity: r.U64(),
		})
	}

	if err := r.Err(); err != nil {
		return nil, err
	}
	return o, nil
}
