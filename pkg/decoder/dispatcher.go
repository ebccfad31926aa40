package decoder

import (
	"github.com/gagliardetto/solana-go"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
	"github.com/lugondev/go-carbon-dex/pkg/types"
)

// Dispatcher routes account buffers to the decoder their registry selects.
// It keeps no state between calls and is safe for concurrent use.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher creates a Dispatcher over a registry.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Registry returns the dispatcher's registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Decode selects a schema for owner and len(data) and decodes data with it.
// On failure the record is nil and the error is a *layout.DecodeError.
func (d *Dispatcher) Decode(owner solana.PublicKey, data []byte) (layout.Record, error) {
	s, err := d.registry.Select(owner, len(data))
	if err != nil {
		return nil, err
	}
	return s.Decode(data)
}

// DecodeUpdate decodes the data of an account update.
func (d *Dispatcher) DecodeUpdate(update types.RawAccountUpdate) (layout.Record, error) {
	return d.Decode(update.Owner, update.Data)
}
