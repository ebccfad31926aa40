package solana

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	carbonerrors "github.com/lugondev/go-carbon-dex/internal/errors"
	"github.com/stretchr/testify/require"
)

type getterFunc func(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)

func (f getterFunc) GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	return f(ctx, account, opts)
}

func TestGetAccount(t *testing.T) {
	key := solana.NewWallet().PublicKey()
	var gotOpts *rpc.GetAccountInfoOpts

	c := NewClientWith(getterFunc(func(_ context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
		require.Equal(t, key, account)
		gotOpts = opts
		res := &rpc.GetAccountInfoResult{
			Value: &rpc.Account{
				Lamports: 99,
				Owner:    solana.TokenProgramID,
				Data:     rpc.DataBytesOrJSONFromBytes([]byte{1, 2, 3}),
			},
		}
		res.Context.Slot = 1234
		return res, nil
	}), rpc.CommitmentFinalized)

	update, err := c.GetAccount(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, key, update.Address)
	require.Equal(t, solana.TokenProgramID, update.Owner)
	require.Equal(t, []byte{1, 2, 3}, update.Data)
	require.Equal(t, uint64(1234), update.Slot)
	require.Equal(t, uint64(99), update.Lamports)
	require.Equal(t, rpc.CommitmentFinalized, gotOpts.Commitment)
}

func TestGetAccountErrors(t *testing.T) {
	boom := errors.New("503")
	failing := NewClientWith(getterFunc(func(context.Context, solana.PublicKey, *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
		return nil, boom
	}), "")
	_, err := failing.GetAccount(context.Background(), solana.SystemProgramID)
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, err, carbonerrors.NewError(carbonerrors.ErrCodeRPC, ""))

	missing := NewClientWith(getterFunc(func(context.Context, solana.PublicKey, *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
		return &rpc.GetAccountInfoResult{}, nil
	}), "")
	_, err = missing.GetAccount(context.Background(), solana.SystemProgramID)
	require.ErrorIs(t, err, rpc.ErrNotFound)
}

func TestParseCommitment(t *testing.T) {
	for _, name := range []string{"processed", "confirmed", "finalized"} {
		c, err := ParseCommitment(name)
		require.NoError(t, err)
		require.Equal(t, rpc.CommitmentType(name), c)
	}

	c, err := ParseCommitment("")
	require.NoError(t, err)
	require.Equal(t, rpc.CommitmentConfirmed, c)

	_, err = ParseCommitment("max")
	require.Error(t, err)
}
