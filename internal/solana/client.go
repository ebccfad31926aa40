// Package solana wraps the Solana RPC calls the CLI needs to fetch account
// snapshots.
package solana

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/lugondev/go-carbon-dex/internal/errors"
	"github.com/lugondev/go-carbon-dex/pkg/types"
)

// AccountInfoGetter is the part of the RPC client that Client uses.
// *rpc.Client satisfies it.
type AccountInfoGetter interface {
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
}

// Client wraps the Solana RPC client
type Client struct {
	rpc        AccountInfoGetter
	commitment rpc.CommitmentType
}

// NewClient creates a new Solana client for endpoint.
func NewClient(endpoint string, commitment rpc.CommitmentType) *Client {
	return NewClientWith(rpc.New(endpoint), commitment)
}

// NewClientWith creates a Client over an existing RPC getter.
func NewClientWith(getter AccountInfoGetter, commitment rpc.CommitmentType) *Client {
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	return &Client{rpc: getter, commitment: commitment}
}

// ParseCommitment maps a configured commitment name to an rpc.CommitmentType.
func ParseCommitment(name string) (rpc.CommitmentType, error) {
	switch c := rpc.CommitmentType(name); c {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
		return c, nil
	case "":
		return rpc.CommitmentConfirmed, nil
	default:
		return "", errors.Config(fmt.Sprintf("invalid commitment %q", name), nil)
	}
}

// GetAccount fetches the current snapshot of an account.
func (c *Client) GetAccount(ctx context.Context, pubkey solana.PublicKey) (types.RawAccountUpdate, error) {
	result, err := c.rpc.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
		Commitment: c.commitment,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		return types.RawAccountUpdate{}, errors.RPC("getAccountInfo", err)
	}
	if result == nil || result.Value == nil {
		return types.RawAccountUpdate{}, errors.RPC("getAccountInfo", rpc.ErrNotFound)
	}

	var data []byte
	if result.Value.Data != nil {
		data = result.Value.Data.GetBinary()
	}
	return types.RawAccountUpdate{
		Address:  pubkey,
		Owner:    result.Value.Owner,
		Data:     data,
		Slot:     result.Context.Slot,
		Lamports: result.Value.Lamports,
	}, nil
}
