// Package raydium decodes Raydium account layouts.
//
// # Overview
//
// Four account families are supported:
//   - AMM v4 pools (legacy, fixed-offset, no discriminator)
//   - Serum/OpenBook v3 markets referenced by AMM v4 pools (legacy, fixed-offset)
//   - CPMM pools (Anchor, discriminator surfaced)
//   - CLMM pools (Anchor, discriminator skipped)
//
// The concentrated-liquidity core shared by CLMM and its forks is exposed as
// ClmmState so other packages can decode layouts derived from it.
package raydium

import "github.com/gagliardetto/solana-go"

// Program IDs.
var (
	AmmV4ProgramID = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	CpmmProgramID  = solana.MustPublicKeyFromBase58("CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C")
	ClmmProgramID  = solana.MustPublicKeyFromBase58("CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK")

	// OpenBookProgramID and SerumV3ProgramID own the markets AMM v4 pools trade against.
	OpenBookProgramID = solana.MustPublicKeyFromBase58("srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX")
	SerumV3ProgramID  = solana.MustPublicKeyFromBase58("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
)
