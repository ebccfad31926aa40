// Package filter provides account filters for the carbon-dex pipeline.
//
// Filters run before an account is decoded. Each returns true if the update
// should be processed. They select accounts by datasource, owning program,
// data size or a byte prefix at an offset, and can be combined with
// FilterChain (all must pass) or AnyOf (one must pass).
package filter

import (
	"slices"

	"github.com/lugondev/go-carbon-dex/internal/datasource"
	"github.com/lugondev/go-carbon-dex/pkg/types"
)

// AccountMetadata holds metadata for an account update.
type AccountMetadata struct {
	// Slot is the Solana slot number where the account was updated.
	Slot uint64

	// Pubkey is the public key of the account.
	Pubkey types.Pubkey
}

// Filter defines the interface for filtering account updates in the pipeline.
type Filter interface {
	// FilterAccount returns true if the account update should be processed.
	FilterAccount(
		datasourceID datasource.DatasourceID,
		accountMetadata *AccountMetadata,
		account *types.Account,
	) bool
}

// FilterFunc adapts a function into a Filter.
type FilterFunc func(datasource.DatasourceID, *AccountMetadata, *types.Account) bool

// FilterAccount calls f.
func (f FilterFunc) FilterAccount(datasourceID datasource.DatasourceID, accountMetadata *AccountMetadata, account *types.Account) bool {
	return f(datasourceID, accountMetadata, account)
}

// DatasourceFilter filters updates based on their datasource ID.
// Only updates from allowed datasources will be processed.
type DatasourceFilter struct {
	allowedDatasources []datasource.DatasourceID
}

// NewDatasourceFilter creates a new filter that allows updates from a single datasource.
func NewDatasourceFilter(datasourceID datasource.DatasourceID) *DatasourceFilter {
	return &DatasourceFilter{
		allowedDatasources: []datasource.DatasourceID{datasourceID},
	}
}

// NewDatasourceFilterMany creates a new filter that allows updates from multiple datasources.
func NewDatasourceFilterMany(datasourceIDs []datasource.DatasourceID) *DatasourceFilter {
	return &DatasourceFilter{
		allowedDatasources: datasourceIDs,
	}
}

func (f *DatasourceFilter) FilterAccount(datasourceID datasource.DatasourceID, _ *AccountMetadata, _ *types.Account) bool {
	for _, allowed := range f.allowedDatasources {
		if allowed.Equals(datasourceID) {
			return true
		}
	}
	return false
}

// OwnerFilter passes accounts owned by one of the given programs.
type OwnerFilter struct {
	owners []types.Pubkey
}

// NewOwnerFilter creates a filter for the given owning programs.
func NewOwnerFilter(owners ...types.Pubkey) *OwnerFilter {
	return &OwnerFilter{owners: owners}
}

func (f *OwnerFilter) FilterAccount(_ datasource.DatasourceID, _ *AccountMetadata, account *types.Account) bool {
	return account != nil && slices.Contains(f.owners, account.Owner)
}

// DataSizeFilter passes accounts whose data length is one of the given sizes.
type DataSizeFilter struct {
	sizes []int
}

// NewDataSizeFilter creates a filter for the given data lengths.
func NewDataSizeFilter(sizes ...int) *DataSizeFilter {
	return &DataSizeFilter{sizes: sizes}
}

func (f *DataSizeFilter) FilterAccount(_ datasource.DatasourceID, _ *AccountMetadata, account *types.Account) bool {
	return account != nil && slices.Contains(f.sizes, len(account.Data))
}

// MemcmpFilter passes accounts whose data holds Bytes at Offset, such as an
// Anchor discriminator at offset 0.
type MemcmpFilter struct {
	Offset int
	Bytes  []byte
}

// NewMemcmpFilter creates a filter matching b at offset.
func NewMemcmpFilter(offset int, b []byte) *MemcmpFilter {
	return &MemcmpFilter{Offset: offset, Bytes: b}
}

// NewDiscriminatorFilter matches an 8-byte discriminator at offset 0.
func NewDiscriminatorFilter(discriminator [8]byte) *MemcmpFilter {
	return NewMemcmpFilter(0, discriminator[:])
}

func (f *MemcmpFilter) FilterAccount(_ datasource.DatasourceID, _ *AccountMetadata, account *types.Account) bool {
	if account == nil || f.Offset < 0 {
		return false
	}
	end := f.Offset + len(f.Bytes)
	if end > len(account.Data) {
		return false
	}
	return slices.Equal(account.Data[f.Offset:end], f.Bytes)
}

// AllowAllFilter is a filter that allows all updates to pass through.
type AllowAllFilter struct{}

// NewAllowAllFilter creates a new filter that allows all updates.
func NewAllowAllFilter() *AllowAllFilter {
	return &AllowAllFilter{}
}

func (f *AllowAllFilter) FilterAccount(datasource.DatasourceID, *AccountMetadata, *types.Account) bool {
	return true
}

// FilterChain chains multiple filters together.
// All filters must pass for the update to be processed.
type FilterChain struct {
	filters []Filter
}

// NewFilterChain creates a new filter chain with the given filters.
func NewFilterChain(filters ...Filter) *FilterChain {
	return &FilterChain{filters: filters}
}

// Add adds a filter to the chain.
func (c *FilterChain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

func (c *FilterChain) FilterAccount(datasourceID datasource.DatasourceID, accountMetadata *AccountMetadata, account *types.Account) bool {
	return CheckAccountFilters(datasourceID, c.filters, accountMetadata, account)
}

// AnyFilter passes an update if at least one of its filters does.
// An empty AnyFilter passes nothing.
type AnyFilter struct {
	filters []Filter
}

// AnyOf creates a filter that passes when any of filters passes.
func AnyOf(filters ...Filter) *AnyFilter {
	return &AnyFilter{filters: filters}
}

func (a *AnyFilter) FilterAccount(datasourceID datasource.DatasourceID, accountMetadata *AccountMetadata, account *types.Account) bool {
	for _, f := range a.filters {
		if f.FilterAccount(datasourceID, accountMetadata, account) {
			return true
		}
	}
	return false
}
