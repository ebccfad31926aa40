// Package layout provides the building blocks shared by every account layout
// decoder: a bounds-checked little-endian reader, per-schema length policies,
// the closed set of schema identifiers and the typed decode errors.
//
// A decoder opens a Reader through Open, which enforces the schema's length
// policy before any field is read:
//
//	r, err := layout.Open(layout.SchemaRaydiumClmmPool, ClmmPoolPolicy, data, layout.DiscriminatorSize)
//	if err != nil {
//		return nil, err
//	}
//	liquidity := r.U128()
//	...
//	if err := r.Err(); err != nil {
//		return nil, err
//	}
package layout

import "fmt"

const (
	// DiscriminatorSize is the size of the tag that prefixes Anchor accounts.
	DiscriminatorSize = 8

	// NoDiscriminator is the start offset of fixed-offset legacy layouts.
	NoDiscriminator = 0

	// KeySize is the size of a public key field.
	KeySize = 32
)

// SchemaID identifies one decodable account shape.
type SchemaID uint8

const (
	SchemaUnknown SchemaID = iota
	SchemaPumpPool
	SchemaRaydiumAmmV4Pool
	SchemaRaydiumMarket
	SchemaRaydiumCpmmPool
	SchemaRaydiumClmmPool
	SchemaSolFiPool
	SchemaMeteoraDlmmPool
	SchemaMeteoraDlmmPoolNoOracle
	SchemaMeteoraOracle
	SchemaMeteoraBinArray
	SchemaMeteoraPool
)

var schemaNames = [...]string{
	SchemaUnknown:                 "unknown",
	SchemaPumpPool:                "pump_pool",
	SchemaRaydiumAmmV4Pool:        "raydium_amm_v4_pool",
	SchemaRaydiumMarket:           "raydium_market",
	SchemaRaydiumCpmmPool:         "raydium_cpmm_pool",
	SchemaRaydiumClmmPool:         "raydium_clmm_pool",
	SchemaSolFiPool:               "solfi_pool",
	SchemaMeteoraDlmmPool:         "meteora_dlmm_pool",
	SchemaMeteoraDlmmPoolNoOracle: "meteora_dlmm_pool_no_oracle",
	SchemaMeteoraOracle:           "meteora_oracle",
	SchemaMeteoraBinArray:         "meteora_bin_array",
	SchemaMeteoraPool:             "meteora_pool",
}

// String returns the snake_case name of the schema.
func (s SchemaID) String() string {
	if int(s) < len(schemaNames) {
		return schemaNames[s]
	}
	return fmt.Sprintf("schema(%d)", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s SchemaID) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Schemas returns every known schema identifier except SchemaUnknown.
func Schemas() []SchemaID {
	ids := make([]SchemaID, 0, len(schemaNames)-1)
	for id := SchemaPumpPool; int(id) < len(schemaNames); id++ {
		ids = append(ids, id)
	}
	return ids
}

// ParseSchema returns the schema with the given snake_case name.
func ParseSchema(name string) (SchemaID, bool) {
	for _, id := range Schemas() {
		if id.String() == name {
			return id, true
		}
	}
	return SchemaUnknown, false
}

// Record is a decoded account. Each program package defines its own
// record types; Schema reports which variant a value is.
type Record interface {
	Schema() SchemaID
}
