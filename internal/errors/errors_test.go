package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
	"github.com/stretchr/testify/require"
)

func TestCarbonErrorIsByCode(t *testing.T) {
	err := Datasource("rpc", fmt.Errorf("connection refused"))
	require.True(t, Is(err, NewError(ErrCodeDatasource, "")))
	require.False(t, Is(err, NewError(ErrCodeRPC, "")))
	require.Equal(t, "DATASOURCE_ERROR: datasource rpc failed: connection refused", err.Error())
}

func TestFromDecodeError(t *testing.T) {
	de := layout.NewLengthMismatch(layout.SchemaRaydiumAmmV4Pool, layout.AtLeast(752), 751)
	ce := FromDecodeError(fmt.Errorf("slot 9: %w", de))

	require.ErrorIs(t, ce, ErrAccountDecode)
	require.ErrorIs(t, ce, layout.ErrLengthMismatch)
	require.Equal(t, "LENGTH_MISMATCH", ce.Details["kind"])
	require.Equal(t, "raydium_amm_v4_pool", ce.Details["schema"])
	require.Equal(t, 752, ce.Details["expected"])
	require.Equal(t, 751, ce.Details["actual"])

	var got *layout.DecodeError
	require.True(t, As(ce, &got))
	require.Same(t, de, got)
}

func TestFromDecodeErrorUnknownShape(t *testing.T) {
	ce := FromDecodeError(layout.NewUnknownShape(solana.SystemProgramID, 904))
	require.Equal(t, solana.SystemProgramID.String(), ce.Details["owner"])
	require.NotContains(t, ce.Details, "schema")
}

func TestFromDecodeErrorPassThrough(t *testing.T) {
	require.Nil(t, FromDecodeError(nil))

	ce := FromDecodeError(stderrors.New("plain"))
	require.Nil(t, ce.Details)
	require.Equal(t, ErrCodeAccountDecode, ce.Code)
}

func TestWrap(t *testing.T) {
	require.NoError(t, Wrap(nil, "ctx"))
	err := Wrap(ErrChannelClosed, "reading updates")
	require.ErrorIs(t, err, ErrChannelClosed)
	require.Equal(t, "reading updates: CHANNEL_CLOSED: channel closed", err.Error())
}
