package filter

import (
	"sync"

	"github.com/lugondev/go-carbon-dex/internal/datasource"
	"github.com/lugondev/go-carbon-dex/pkg/types"
)

// CheckAccountFilters reports whether every filter passes the update.
func CheckAccountFilters(datasourceID datasource.DatasourceID, filters []Filter, metadata *AccountMetadata, account *types.Account) bool {
	for _, f := range filters {
		if !f.FilterAccount(datasourceID, metadata, account) {
			return false
		}
	}
	return true
}

// SkipStartupFilter drops the first update seen for each account, so only
// changes after startup are processed.
type SkipStartupFilter struct {
	mu   sync.Mutex
	seen map[types.Pubkey]struct{}
}

// NewSkipStartupFilter creates a SkipStartupFilter.
func NewSkipStartupFilter() *SkipStartupFilter {
	return &SkipStartupFilter{seen: make(map[types.Pubkey]struct{})}
}

func (f *SkipStartupFilter) FilterAccount(_ datasource.DatasourceID, metadata *AccountMetadata, _ *types.Account) bool {
	if metadata == nil {
		return true
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.seen[metadata.Pubkey]; ok {
		return true
	}
	f.seen[metadata.Pubkey] = struct{}{}
	return false
}
