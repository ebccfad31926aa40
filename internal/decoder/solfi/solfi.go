// Package solfi decodes SolFi pool accounts. SolFi pools share the Raydium
// CLMM core layout without the leading bump byte being meaningful.
package solfi

import (
	"github.com/gagliardetto/solana-go"
	"github.com/lugondev/go-carbon-dex/internal/decoder/raydium"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
)

// ProgramID is the SolFi program.
var ProgramID = solana.MustPublicKeyFromBase58("SoLFiHG9TfgtdUXUjWAxi3LtvYuFyDLVhBWxdMZxyCe")

const (
	// PoolSize is the SolFi pool account size.
	PoolSize = 904

	poolBumpSize = 1
)

// PoolPolicy requires the exact SolFi pool size.
var PoolPolicy = layout.Exact(PoolSize)

// Pool is a SolFi pool account. Bytes after the status field are not surfaced.
type Pool struct {
	raydium.ClmmState
}

// Schema implements layout.Record.
func (*Pool) Schema() layout.SchemaID { return layout.SchemaSolFiPool }

// DecodePool decodes a SolFi pool account.
func DecodePool(data []byte) (*Pool, error) {
	r, err := layout.Open(layout.SchemaSolFiPool, PoolPolicy, data, layout.DiscriminatorSize)
	if err != nil {
		return nil, err
	}

	r.Skip(poolBumpSize)
	p := &Pool{ClmmState: raydium.ReadClmmState(r)}

	if err := r.Err(); err != nil {
		return nil, err
	}
	return p, nil
}
