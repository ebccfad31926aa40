// Package meteora decodes Meteora DLMM and dynamic AMM (Pools) accounts.
//
// # Overview
//
// DLMM accounts are owned by the LB CLMM program:
//   - LbPair pools, in two layouts (DlmmPool with oracle, DlmmPoolNoOracle without)
//   - Oracle accounts: a fixed header followed by observation records
//   - BinArray accounts: a fixed header followed by exactly 70 bins
//
// Pool accounts are owned by the dynamic AMM program.
package meteora

import "github.com/gagliardetto/solana-go"

// Program IDs.
var (
	DlmmProgramID  = solana.MustPublicKeyFromBase58("LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo")
	PoolsProgramID = solana.MustPublicKeyFromBase58("Eo7WjKq67rjJQSZxS6z3YkapzY3eMj6Xy8X5EQVn5UaB")
)
