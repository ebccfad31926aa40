// Package account provides the pipe that decodes account updates and hands
// the results to a processor.
//
// # Overview
//
// The account package supports these tasks:
//   - Account Metadata: the slot and address of an update.
//   - Decoded Account: a decoded record plus the account's balance and owner.
//   - Account Decoders: turn raw account bytes into a record, or report why not.
//   - Account Pipes: filter, decode and process updates for the pipeline.
//
// A decode failure is never fatal. The pipe logs it at debug level, counts it
// per error kind and skips the update.
package account

import (
	"context"
	"log/slog"
	"time"

	"github.com/lugondev/go-carbon-dex/internal/datasource"
	"github.com/lugondev/go-carbon-dex/internal/errors"
	"github.com/lugondev/go-carbon-dex/internal/filter"
	"github.com/lugondev/go-carbon-dex/internal/metrics"
	"github.com/lugondev/go-carbon-dex/internal/processor"
	"github.com/lugondev/go-carbon-dex/pkg/decoder"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
	"github.com/lugondev/go-carbon-dex/pkg/types"
)

// AccountMetadata holds metadata for an account update, including the slot and public key.
type AccountMetadata struct {
	// Slot is the Solana slot number where the account was updated.
	Slot uint64

	// Pubkey is the public key of the account.
	Pubkey types.Pubkey
}

// NewAccountMetadata creates AccountMetadata from an AccountUpdate.
func NewAccountMetadata(update *datasource.AccountUpdate) *AccountMetadata {
	return &AccountMetadata{
		Slot:   update.Slot,
		Pubkey: update.Pubkey,
	}
}

// DecodedAccount is a decoded account record with the account's metadata.
//
// Type parameter T is the type of the decoded record, determined by the
// decoder used.
type DecodedAccount[T any] struct {
	// Lamports is the number of lamports in the account.
	Lamports uint64

	// Data is the decoded record.
	Data T

	// Owner is the public key of the account's owner.
	Owner types.Pubkey

	// Executable indicates whether the account is executable.
	Executable bool

	// RentEpoch is the rent epoch of the account.
	RentEpoch uint64
}

func newDecodedAccount[T any](account *types.Account, data T) *DecodedAccount[T] {
	return &DecodedAccount[T]{
		Lamports:   account.Lamports,
		Data:       data,
		Owner:      account.Owner,
		Executable: account.Executable,
		RentEpoch:  account.RentEpoch,
	}
}

// AccountDecoder decodes raw Solana accounts into records of type T.
type AccountDecoder[T any] interface {
	// DecodeAccount decodes account. A nil result with a nil error means the
	// account is not one this decoder handles.
	DecodeAccount(account *types.Account) (*DecodedAccount[T], error)
}

// AccountDecoderFunc is a function type that implements AccountDecoder.
type AccountDecoderFunc[T any] func(account *types.Account) (*DecodedAccount[T], error)

// DecodeAccount implements AccountDecoder interface.
func (f AccountDecoderFunc[T]) DecodeAccount(account *types.Account) (*DecodedAccount[T], error) {
	return f(account)
}

// DispatcherDecoder decodes any account the dispatcher's registry knows,
// selecting the layout by owner and data length.
type DispatcherDecoder struct {
	dispatcher *decoder.Dispatcher
}

// NewDispatcherDecoder creates a DispatcherDecoder.
func NewDispatcherDecoder(d *decoder.Dispatcher) *DispatcherDecoder {
	return &DispatcherDecoder{dispatcher: d}
}

// DecodeAccount implements AccountDecoder interface.
func (d *DispatcherDecoder) DecodeAccount(account *types.Account) (*DecodedAccount[layout.Record], error) {
	record, err := d.dispatcher.Decode(account.Owner, account.Data)
	if err != nil {
		return nil, err
	}
	return newDecodedAccount(account, record), nil
}

// ProgramAccountDecoder decodes accounts owned by a single program with one
// decode function.
type ProgramAccountDecoder[T any] struct {
	// ProgramID is the expected program ID for accounts this decoder handles.
	ProgramID types.Pubkey

	// DecodeFunc is the function that decodes the account data.
	DecodeFunc func(data []byte) (T, error)
}

// NewProgramAccountDecoder creates a new ProgramAccountDecoder.
func NewProgramAccountDecoder[T any](
	programID types.Pubkey,
	decodeFunc func(data []byte) (T, error),
) *ProgramAccountDecoder[T] {
	return &ProgramAccountDecoder[T]{
		ProgramID:  programID,
		DecodeFunc: decodeFunc,
	}
}

// DecodeAccount implements AccountDecoder interface.
// Accounts of other programs are skipped without error.
func (d *ProgramAccountDecoder[T]) DecodeAccount(account *types.Account) (*DecodedAccount[T], error) {
	if account.Owner != d.ProgramID {
		return nil, nil
	}
	data, err := d.DecodeFunc(account.Data)
	if err != nil {
		return nil, err
	}
	return newDecodedAccount(account, data), nil
}

// AccountProcessorInput is the input type for the account processor.
// It contains account metadata, the decoded account, and the raw account.
type AccountProcessorInput[T any] struct {
	// Metadata contains information about the account update.
	Metadata *AccountMetadata

	// DecodedAccount contains the decoded account data.
	DecodedAccount *DecodedAccount[T]

	// RawAccount contains the original raw account data.
	RawAccount *types.Account
}

// AccountPipe filters, decodes and processes account updates.
//
// Type parameter T is the data type of the decoded account information.
type AccountPipe[T any] struct {
	// Decoder is an AccountDecoder that decodes raw account data.
	Decoder AccountDecoder[T]

	// Processor handles the processing logic for decoded accounts.
	Processor processor.Processor[AccountProcessorInput[T]]

	// Filters determine which account updates should be processed.
	// Only updates that pass all filters will be decoded.
	Filters []filter.Filter

	// Logger is used for logging (optional).
	Logger *slog.Logger
}

// NewAccountPipe creates a new AccountPipe with the given decoder and processor.
func NewAccountPipe[T any](
	decoder AccountDecoder[T],
	proc processor.Processor[AccountProcessorInput[T]],
) *AccountPipe[T] {
	return NewAccountPipeWithFilters(decoder, proc, nil)
}

// NewAccountPipeWithFilters creates a new AccountPipe with filters.
func NewAccountPipeWithFilters[T any](
	decoder AccountDecoder[T],
	proc processor.Processor[AccountProcessorInput[T]],
	filters []filter.Filter,
) *AccountPipe[T] {
	return &AccountPipe[T]{
		Decoder:   decoder,
		Processor: proc,
		Filters:   filters,
		Logger:    slog.Default(),
	}
}

// NewDispatcherPipe creates a pipe that decodes every registered layout.
func NewDispatcherPipe(
	d *decoder.Dispatcher,
	proc processor.Processor[AccountProcessorInput[layout.Record]],
	filters ...filter.Filter,
) *AccountPipe[layout.Record] {
	return NewAccountPipeWithFilters[layout.Record](NewDispatcherDecoder(d), proc, filters)
}

// WithLogger sets a custom logger for the AccountPipe.
func (p *AccountPipe[T]) WithLogger(logger *slog.Logger) *AccountPipe[T] {
	p.Logger = logger
	return p
}

// AddFilter adds a filter to the AccountPipe.
func (p *AccountPipe[T]) AddFilter(f filter.Filter) {
	p.Filters = append(p.Filters, f)
}

// GetFilters returns the filters associated with this pipe.
func (p *AccountPipe[T]) GetFilters() []filter.Filter {
	return p.Filters
}

// Run decodes an account update and passes the result to the processor.
// Decode failures are counted and skipped. Only processor errors are returned.
func (p *AccountPipe[T]) Run(
	ctx context.Context,
	metadata *AccountMetadata,
	account *types.Account,
	metricsCollection *metrics.Collection,
) error {
	start := time.Now()
	decoded, err := p.Decoder.DecodeAccount(account)
	_ = metricsCollection.RecordHistogram(ctx, metrics.MetricAccountDecodeTimeNanoseconds, float64(time.Since(start).Nanoseconds()))

	if err != nil {
		p.recordFailure(ctx, metadata, account, err, metricsCollection)
		return nil
	}
	if decoded == nil {
		return nil
	}

	_ = metricsCollection.IncrementCounter(ctx, metrics.MetricAccountDecodedTotal, 1)
	if r, ok := any(decoded.Data).(layout.Record); ok && r != nil {
		_ = metricsCollection.IncrementCounter(ctx, metrics.DecodedMetric(r.Schema()), 1)
	}

	input := AccountProcessorInput[T]{
		Metadata:       metadata,
		DecodedAccount: decoded,
		RawAccount:     account,
	}
	if err := p.Processor.Process(ctx, input, metricsCollection); err != nil {
		return errors.Processor("account "+metadata.Pubkey.String(), err)
	}
	return nil
}

func (p *AccountPipe[T]) recordFailure(
	ctx context.Context,
	metadata *AccountMetadata,
	account *types.Account,
	err error,
	metricsCollection *metrics.Collection,
) {
	_ = metricsCollection.IncrementCounter(ctx, metrics.MetricAccountDecodeFailuresTotal, 1)

	var de *layout.DecodeError
	if errors.As(err, &de) {
		_ = metricsCollection.IncrementCounter(ctx, metrics.DecodeFailureMetric(de.Kind), 1)
	}

	ce := errors.FromDecodeError(err)
	p.Logger.Debug("skipping undecodable account",
		"pubkey", metadata.Pubkey.String(),
		"slot", metadata.Slot,
		"owner", account.Owner.String(),
		"size", len(account.Data),
		"error", ce.Cause,
		"details", ce.Details,
	)
}

// AccountPipeRunner is an interface for running account pipes.
// This allows for type-erased storage of AccountPipe instances with different type parameters.
type AccountPipeRunner interface {
	// RunAccount processes an account update.
	RunAccount(
		ctx context.Context,
		metadata *AccountMetadata,
		account *types.Account,
		metricsCollection *metrics.Collection,
	) error

	// GetFilters returns the filters for this pipe.
	GetFilters() []filter.Filter
}

// Ensure AccountPipe implements AccountPipeRunner.
var _ AccountPipeRunner = (*AccountPipe[layout.Record])(nil)

// RunAccount implements AccountPipeRunner interface.
func (p *AccountPipe[T]) RunAccount(
	ctx context.Context,
	metadata *AccountMetadata,
	account *types.Account,
	metricsCollection *metrics.Collection,
) error {
	return p.Run(ctx, metadata, account, metricsCollection)
}

// MultiAccountPipe manages multiple account pipes and routes updates to all of them.
type MultiAccountPipe struct {
	pipes  []AccountPipeRunner
	logger *slog.Logger
}

// NewMultiAccountPipe creates a new MultiAccountPipe.
func NewMultiAccountPipe() *MultiAccountPipe {
	return &MultiAccountPipe{
		pipes:  make([]AccountPipeRunner, 0),
		logger: slog.Default(),
	}
}

// AddPipe adds an account pipe to the multi-pipe.
func (m *MultiAccountPipe) AddPipe(pipe AccountPipeRunner) {
	m.pipes = append(m.pipes, pipe)
}

// WithLogger sets a custom logger.
func (m *MultiAccountPipe) WithLogger(logger *slog.Logger) *MultiAccountPipe {
	m.logger = logger
	return m
}

// Run passes an account update to every pipe whose filters accept it.
func (m *MultiAccountPipe) Run(
	ctx context.Context,
	datasourceID datasource.DatasourceID,
	metadata *AccountMetadata,
	account *types.Account,
	metricsCollection *metrics.Collection,
) error {
	filterMetadata := &filter.AccountMetadata{
		Slot:   metadata.Slot,
		Pubkey: metadata.Pubkey,
	}

	for _, pipe := range m.pipes {
		if !filter.CheckAccountFilters(datasourceID, pipe.GetFilters(), filterMetadata, account) {
			_ = metricsCollection.IncrementCounter(ctx, metrics.MetricUpdatesFiltered, 1)
			continue
		}

		if err := pipe.RunAccount(ctx, metadata, account, metricsCollection); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of pipes in the multi-pipe.
func (m *MultiAccountPipe) Len() int {
	return len(m.pipes)
}
