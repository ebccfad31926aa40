// Package rpc provides an RPC polling datasource for the carbon-dex pipeline.
//
// AccountMonitorDatasource polls a fixed set of accounts with getAccountInfo
// and emits a snapshot whenever an account's data changes. A bounded LRU of
// the last seen slot and data hash per account suppresses repeats.
package rpc

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lugondev/go-carbon-dex/internal/datasource"
	"github.com/lugondev/go-carbon-dex/internal/metrics"
	"github.com/lugondev/go-carbon-dex/pkg/types"
)

// DefaultPollInterval is the default interval for polling account updates.
const DefaultPollInterval = 1 * time.Second

// DefaultMaxRetries is the default number of retries for RPC calls.
const DefaultMaxRetries = 3

// DefaultRetryDelay is the default delay between retries.
const DefaultRetryDelay = 500 * time.Millisecond

// DefaultDedupeCacheSize is the default number of accounts tracked for deduplication.
const DefaultDedupeCacheSize = 4096

// Config holds the configuration for the RPC datasource.
type Config struct {
	// RPCURL is the URL of the Solana RPC endpoint.
	RPCURL string

	// PollInterval is the interval for polling account updates.
	PollInterval time.Duration

	// MaxRetries is the maximum number of retries for RPC calls.
	MaxRetries int

	// RetryDelay is the delay between retries.
	RetryDelay time.Duration

	// CommitmentLevel is the commitment level for RPC calls.
	CommitmentLevel rpc.CommitmentType

	// DedupeCacheSize bounds the per-account dedupe state.
	DedupeCacheSize int
}

// DefaultConfig returns a default configuration.
func DefaultConfig(rpcURL string) *Config {
	return &Config{
		RPCURL:          rpcURL,
		PollInterval:    DefaultPollInterval,
		MaxRetries:      DefaultMaxRetries,
		RetryDelay:      DefaultRetryDelay,
		CommitmentLevel: rpc.CommitmentConfirmed,
		DedupeCacheSize: DefaultDedupeCacheSize,
	}
}

// AccountInfoGetter is the part of the RPC client the monitor uses.
// *rpc.Client satisfies it.
type AccountInfoGetter interface {
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
}

// seenState is what the dedupe cache remembers about an account.
type seenState struct {
	slot uint64
	hash uint64
}

// AccountMonitorDatasource monitors specific accounts for changes.
type AccountMonitorDatasource struct {
	config   *Config
	client   AccountInfoGetter
	accounts []solana.PublicKey
	logger   *slog.Logger

	// seen holds the last emitted slot and data hash per account.
	seen *lru.Cache[solana.PublicKey, seenState]
	mu   sync.RWMutex
}

// NewAccountMonitorDatasource creates a new AccountMonitorDatasource backed by
// an RPC client for config.RPCURL.
func NewAccountMonitorDatasource(config *Config, accounts []solana.PublicKey) (*AccountMonitorDatasource, error) {
	return NewAccountMonitorDatasourceWithClient(config, rpc.New(config.RPCURL), accounts)
}

// NewAccountMonitorDatasourceWithClient creates an AccountMonitorDatasource using client.
func NewAccountMonitorDatasourceWithClient(
	config *Config,
	client AccountInfoGetter,
	accounts []solana.PublicKey,
) (*AccountMonitorDatasource, error) {
	size := config.DedupeCacheSize
	if size <= 0 {
		size = DefaultDedupeCacheSize
	}
	seen, err := lru.New[solana.PublicKey, seenState](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create dedupe cache: %w", err)
	}

	return &AccountMonitorDatasource{
		config:   config,
		client:   client,
		accounts: accounts,
		logger:   slog.Default(),
		seen:     seen,
	}, nil
}

// WithLogger sets a custom logger.
func (d *AccountMonitorDatasource) WithLogger(logger *slog.Logger) *AccountMonitorDatasource {
	d.logger = logger
	return d
}

// AddAccount adds an account to monitor.
func (d *AccountMonitorDatasource) AddAccount(account solana.PublicKey) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accounts = append(d.accounts, account)
}

// Consume starts consuming updates from the RPC endpoint.
func (d *AccountMonitorDatasource) Consume(
	ctx context.Context,
	id datasource.DatasourceID,
	updates chan<- datasource.UpdateWithSource,
	m *metrics.Collection,
) error {
	d.logger.Info("starting RPC account monitor datasource",
		"datasource_id", id.String(),
		"num_accounts", len(d.accounts),
		"poll_interval", d.config.PollInterval,
	)

	interval := d.config.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial fetch
	if err := d.Poll(ctx, id, updates, m); err != nil && ctx.Err() == nil {
		d.logger.Error("initial fetch failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("RPC datasource shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := d.Poll(ctx, id, updates, m); err != nil && ctx.Err() == nil {
				d.logger.Error("failed to fetch accounts", "error", err)
				_ = m.IncrementCounter(ctx, "rpc_fetch_errors", 1)
			}
		}
	}
}

// Poll fetches every monitored account once and sends the ones that changed.
func (d *AccountMonitorDatasource) Poll(
	ctx context.Context,
	id datasource.DatasourceID,
	updates chan<- datasource.UpdateWithSource,
	m *metrics.Collection,
) error {
	d.mu.RLock()
	accounts := make([]solana.PublicKey, len(d.accounts))
	copy(accounts, d.accounts)
	d.mu.RUnlock()

	for _, pubkey := range accounts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		accountInfo, err := d.getAccountInfoWithRetry(ctx, pubkey)
		if err != nil {
			d.logger.Warn("failed to get account info",
				"pubkey", pubkey.String(),
				"error", err,
			)
			continue
		}

		if accountInfo == nil || accountInfo.Value == nil {
			d.logger.Debug("account not found", "pubkey", pubkey.String())
			continue
		}

		account := convertAccount(accountInfo.Value)
		currentSlot := accountInfo.Context.Slot
		if !d.markSeen(pubkey, currentSlot, account.Data) {
			_ = m.IncrementCounter(ctx, metrics.MetricDatasourceDuplicatesSkipped, 1)
			continue
		}

		err = datasource.Send(ctx, updates, id, &datasource.AccountUpdate{
			Pubkey:  types.Pubkey(pubkey),
			Account: account,
			Slot:    currentSlot,
		})
		if err != nil {
			return err
		}
		d.logger.Debug("sent account update",
			"pubkey", pubkey.String(),
			"slot", currentSlot,
			"size", len(account.Data),
		)
		_ = m.IncrementCounter(ctx, "rpc_account_updates", 1)
	}

	return nil
}

// markSeen records a snapshot and reports whether it is new: a later slot
// with different bytes than the last one emitted for the account.
func (d *AccountMonitorDatasource) markSeen(pubkey solana.PublicKey, slot uint64, data []byte) bool {
	h := fnv.New64a()
	_, _ = h.Write(data)
	state := seenState{slot: slot, hash: h.Sum64()}

	if prev, ok := d.seen.Get(pubkey); ok {
		if slot <= prev.slot || state.hash == prev.hash {
			return false
		}
	}
	d.seen.Add(pubkey, state)
	return true
}

// getAccountInfoWithRetry gets account info with retry logic.
func (d *AccountMonitorDatasource) getAccountInfoWithRetry(
	ctx context.Context,
	pubkey solana.PublicKey,
) (*rpc.GetAccountInfoResult, error) {
	var lastErr error

	retries := max(d.config.MaxRetries, 1)
	for i := 0; i < retries; i++ {
		result, err := d.client.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
			Commitment: d.config.CommitmentLevel,
		})
		if err == nil {
			return result, nil
		}

		lastErr = err
		d.logger.Debug("RPC call failed, retrying",
			"attempt", i+1,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d.config.RetryDelay):
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", retries, lastErr)
}

// UpdateTypes returns the types of updates this datasource can provide.
func (d *AccountMonitorDatasource) UpdateTypes() []datasource.UpdateType {
	return []datasource.UpdateType{datasource.UpdateTypeAccount}
}

// convertAccount converts a solana-go Account to a carbon types.Account.
func convertAccount(acc *rpc.Account) types.Account {
	if acc == nil {
		return types.Account{}
	}

	var rentEpoch uint64
	if acc.RentEpoch != nil {
		rentEpoch = acc.RentEpoch.Uint64()
	}

	var data []byte
	if acc.Data != nil {
		data = acc.Data.GetBinary()
	}

	return types.Account{
		Lamports:   acc.Lamports,
		Data:       data,
		Owner:      types.Pubkey(acc.Owner),
		Executable: acc.Executable,
		RentEpoch:  rentEpoch,
	}
}
