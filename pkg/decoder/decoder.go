// Package decoder selects and runs account layout decoders.
//
// # Overview
//
// A Registry holds a fixed set of Schemas, each binding a layout to the
// programs that own it, its length policy and its decode function. Selection
// is keyed on the owning program first and the buffer length second:
//   - for a registered owner, the schema whose size equals the length wins,
//     otherwise the owner's single minimum-size schema if the length reaches it
//   - for an unregistered owner, the length alone must name exactly one schema
//
// The Dispatcher never tries several decoders and keeps whichever succeeds.
//
// Example usage:
//
//	reg, err := decoder.NewRegistry(
//		decoder.NewSchema(layout.SchemaPumpPool, pump.PoolPolicy, pump.DecodePool, pump.ProgramID),
//	)
//	if err != nil {
//		return err
//	}
//	record, err := decoder.NewDispatcher(reg).Decode(owner, data)
package decoder

import (
	"fmt"
	"slices"

	"github.com/gagliardetto/solana-go"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
)

// DecodeFunc decodes a buffer into a record.
type DecodeFunc func(data []byte) (layout.Record, error)

// Schema binds a layout to its owners, length policy and decoder.
type Schema struct {
	// ID identifies the layout.
	ID layout.SchemaID

	// Owners are the programs whose accounts use this layout.
	Owners []solana.PublicKey

	// Policy is the length constraint checked before decoding.
	Policy layout.LengthPolicy

	// Decode decodes a buffer of this layout.
	Decode DecodeFunc
}

// NewSchema creates a Schema from a typed decode function.
func NewSchema[T layout.Record](id layout.SchemaID, policy layout.LengthPolicy, decode func([]byte) (T, error), owners ...solana.PublicKey) Schema {
	return Schema{
		ID:     id,
		Owners: owners,
		Policy: policy,
		Decode: func(data []byte) (layout.Record, error) {
			v, err := decode(data)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// Name returns the schema name.
func (s Schema) Name() string {
	return s.ID.String()
}

// OwnedBy reports whether owner is one of the schema's owners.
func (s Schema) OwnedBy(owner solana.PublicKey) bool {
	return slices.Contains(s.Owners, owner)
}

// Registry is an immutable set of schemas indexed by owner and size.
// It is safe for concurrent use.
type Registry struct {
	schemas []Schema
	byOwner map[solana.PublicKey][]int
	bySize  map[int][]int
}

// NewRegistry validates schemas and builds a Registry over them.
// It fails if two schemas share an ID, a schema has no owner or decoder,
// or one owner would have two schemas of the same size.
func NewRegistry(schemas ...Schema) (*Registry, error) {
	r := &Registry{
		schemas: make([]Schema, 0, len(schemas)),
		byOwner: make(map[solana.PublicKey][]int),
		bySize:  make(map[int][]int),
	}

	seen := make(map[layout.SchemaID]bool, len(schemas))
	for _, s := range schemas {
		if s.ID == layout.SchemaUnknown {
			return nil, fmt.Errorf("schema has no id")
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("duplicate schema: %s", s.ID)
		}
		if len(s.Owners) == 0 {
			return nil, fmt.Errorf("schema %s has no owners", s.ID)
		}
		if s.Decode == nil {
			return nil, fmt.Errorf("schema %s has no decoder", s.ID)
		}
		seen[s.ID] = true

		idx := len(r.schemas)
		s.Owners = slices.Clone(s.Owners)
		r.schemas = append(r.schemas, s)
		r.bySize[s.Policy.Size] = append(r.bySize[s.Policy.Size], idx)

		for _, owner := range s.Owners {
			for _, j := range r.byOwner[owner] {
				if r.schemas[j].Policy.Size == s.Policy.Size {
					return nil, fmt.Errorf("schemas %s and %s are both %d bytes for owner %s",
						r.schemas[j].ID, s.ID, s.Policy.Size, owner)
				}
			}
			r.byOwner[owner] = append(r.byOwner[owner], idx)
		}
	}

	return r, nil
}

// Select returns the schema for an owner and buffer length, or an
// UnknownShape error.
func (r *Registry) Select(owner solana.PublicKey, length int) (Schema, error) {
	if idx, ok := r.byOwner[owner]; ok {
		var atLeast []int
		for _, i := range idx {
			s := r.schemas[i]
			if s.Policy.Size == length {
				return s, nil
			}
			if s.Policy.Mode == layout.ModeAtLeast {
				atLeast = append(atLeast, i)
			}
		}
		if len(atLeast) == 1 && r.schemas[atLeast[0]].Policy.Size <= length {
			return r.schemas[atLeast[0]], nil
		}
		return Schema{}, layout.NewUnknownShape(owner, length)
	}

	if idx := r.bySize[length]; len(idx) == 1 {
		return r.schemas[idx[0]], nil
	}
	if len(r.bySize[length]) > 1 {
		return Schema{}, layout.NewUnknownShape(owner, length).
			WithDetails("%d schemas share this size", len(r.bySize[length]))
	}
	return Schema{}, layout.NewUnknownShape(owner, length)
}

// Schemas returns the registered schemas in registration order.
func (r *Registry) Schemas() []Schema {
	return slices.Clone(r.schemas)
}

// Lookup returns the schema registered under id.
func (r *Registry) Lookup(id layout.SchemaID) (Schema, bool) {
	for _, s := range r.schemas {
		if s.ID == id {
			return s, true
		}
	}
	return Schema{}, false
}

// Owners returns every owner with at least one registered schema.
func (r *Registry) Owners() []solana.PublicKey {
	owners := make([]solana.PublicKey, 0, len(r.byOwner))
	for _, s := range r.schemas {
		for _, o := range s.Owners {
			if !slices.Contains(owners, o) {
				owners = append(owners, o)
			}
		}
	}
	return owners
}
