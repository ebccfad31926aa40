// Package types provides base Solana types and structures used throughout go-carbon-dex.
// It wraps the solana-go library types for consistency and convenience.
package types

import (
	"github.com/gagliardetto/solana-go"
)

// Pubkey is a Solana public key (32 bytes).
type Pubkey = solana.PublicKey

// Account represents a Solana account with its data and metadata.
type Account struct {
	// Lamports is the number of lamports owned by this account.
	Lamports uint64 `json:"lamports"`

	// Data is the data held in this account.
	Data []byte `json:"data"`

	// Owner is the program that owns this account.
	Owner Pubkey `json:"owner"`

	// Executable indicates if the account contains a program.
	Executable bool `json:"executable"`

	// RentEpoch is the epoch at which this account will next owe rent.
	RentEpoch uint64 `json:"rent_epoch"`
}

// RawAccountUpdate is one account snapshot as delivered by a stream:
// the account address, its owning program and the raw bytes.
type RawAccountUpdate struct {
	// Address is the account's public key.
	Address Pubkey `json:"address"`

	// Owner is the program that owns the account bytes.
	Owner Pubkey `json:"owner"`

	// Data is the raw account data.
	Data []byte `json:"data"`

	// Slot is the slot the snapshot was taken at, zero when unknown.
	Slot uint64 `json:"slot,omitempty"`

	// Lamports is the account balance, zero when unknown.
	Lamports uint64 `json:"lamports,omitempty"`
}

// NewRawAccountUpdate builds a RawAccountUpdate from an account snapshot.
func NewRawAccountUpdate(address Pubkey, account *Account, slot uint64) RawAccountUpdate {
	return RawAccountUpdate{
		Address:  address,
		Owner:    account.Owner,
		Data:     account.Data,
		Slot:     slot,
		Lamports: account.Lamports,
	}
}

// LamportsPerSOL is the number of lamports per SOL.
const LamportsPerSOL uint64 = 1_000_000_000

// LamportsToSOL converts lamports to SOL.
func LamportsToSOL(lamports uint64) float64 {
	return float64(lamports) / float64(LamportsPerSOL)
}
