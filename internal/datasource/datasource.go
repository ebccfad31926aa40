// Package datasource provides the interface and types for producing account
// snapshots into the pipeline.
//
// A Datasource pushes AccountUpdates into a channel until its context is
// cancelled or its input is exhausted. Each update carries the raw account
// bytes and the owning program, which is all the decoder needs.
package datasource

import (
	"context"

	"github.com/google/uuid"
	"github.com/lugondev/go-carbon-dex/internal/metrics"
	"github.com/lugondev/go-carbon-dex/pkg/types"
)

// UpdateType categorizes the kinds of updates that a datasource can provide.
type UpdateType int

const (
	// UpdateTypeAccount indicates account updates.
	UpdateTypeAccount UpdateType = iota
)

// String returns the string representation of the UpdateType.
func (ut UpdateType) String() string {
	switch ut {
	case UpdateTypeAccount:
		return "AccountUpdate"
	default:
		return "Unknown"
	}
}

// DatasourceID uniquely identifies a datasource in the pipeline.
// It's used to track the source of data updates and enable filtering.
type DatasourceID struct {
	id string
}

// NewUniqueDatasourceID creates a new datasource ID with a randomly generated unique identifier.
func NewUniqueDatasourceID() DatasourceID {
	return DatasourceID{id: uuid.New().String()}
}

// NewNamedDatasourceID creates a new datasource ID with a specific name.
func NewNamedDatasourceID(name string) DatasourceID {
	return DatasourceID{id: name}
}

// String returns the string representation of the DatasourceID.
func (d DatasourceID) String() string {
	return d.id
}

// Equals checks if two DatasourceIDs are equal.
func (d DatasourceID) Equals(other DatasourceID) bool {
	return d.id == other.id
}

// Update represents a data update in the pipeline.
type Update struct {
	// Type indicates what kind of update this is.
	Type UpdateType

	// Account is set when Type is UpdateTypeAccount.
	Account *AccountUpdate
}

// NewAccountUpdate creates a new Update for an account update.
func NewAccountUpdate(update *AccountUpdate) Update {
	return Update{
		Type:    UpdateTypeAccount,
		Account: update,
	}
}

// AccountUpdate represents an update to a Solana account.
type AccountUpdate struct {
	// Pubkey is the public key of the account being updated.
	Pubkey types.Pubkey

	// Account is the new state of the account.
	Account types.Account

	// Slot is the slot number in which this account update was recorded.
	Slot uint64
}

// FromRaw builds an AccountUpdate from a raw snapshot.
func FromRaw(raw types.RawAccountUpdate) *AccountUpdate {
	return &AccountUpdate{
		Pubkey: raw.Address,
		Account: types.Account{
			Lamports: raw.Lamports,
			Data:     raw.Data,
			Owner:    raw.Owner,
		},
		Slot: raw.Slot,
	}
}

// Raw returns the update as the decoder's input record.
func (u *AccountUpdate) Raw() types.RawAccountUpdate {
	return types.NewRawAccountUpdate(u.Pubkey, &u.Account, u.Slot)
}

// UpdateWithSource pairs an Update with its DatasourceID.
type UpdateWithSource struct {
	Update       Update
	DatasourceID DatasourceID
}

// Datasource defines the interface for data sources that produce updates.
//
// Implementations of this interface are responsible for fetching updates
// and sending them through a channel to be processed by the pipeline.
type Datasource interface {
	// Consume starts consuming updates from the datasource.
	// Updates should be sent to the provided channel along with the datasource ID.
	// The context is used for cancellation.
	// The metrics collection is used for recording performance metrics.
	Consume(
		ctx context.Context,
		id DatasourceID,
		updates chan<- UpdateWithSource,
		metrics *metrics.Collection,
	) error

	// UpdateTypes returns the types of updates this datasource can provide.
	UpdateTypes() []UpdateType
}

// Send delivers an account update, returning ctx.Err() if the context ends first.
func Send(ctx context.Context, updates chan<- UpdateWithSource, id DatasourceID, update *AccountUpdate) error {
	select {
	case updates <- UpdateWithSource{Update: NewAccountUpdate(update), DatasourceID: id}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
