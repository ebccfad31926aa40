package layout_test

import (
	"errors"
	"testing"

	"github.com/lugondev/go-carbon-dex/internal/testutil"
	"github.com/lugondev/go-carbon-dex/pkg/layout"
	"github.com/stretchr/testify/require"
)

func TestReaderReadsLittleEndian(t *testing.T) {
	k := testutil.Key(0xAB)
	data := testutil.NewBuilder(1+2+4+8+16+4+8+1+32+3).
		U8(0x7f).
		U16(0x1234).
		U32(0xdeadbeef).
		U64(0x0102030405060708).
		U128(42, 7).
		I32(-5).
		I64(-1 << 40).
		U8(2).
		Key(k).
		Raw([]byte{9, 8, 7}).
		Bytes()

	r := layout.NewReader(data)
	require.Equal(t, uint8(0x7f), r.U8())
	require.Equal(t, uint16(0x1234), r.U16())
	require.Equal(t, uint32(0xdeadbeef), r.U32())
	require.Equal(t, uint64(0x0102030405060708), r.U64())

	v := r.U128()
	require.Equal(t, uint64(42), v.Lo)
	require.Equal(t, uint64(7), v.Hi)

	require.Equal(t, int32(-5), r.I32())
	require.Equal(t, int64(-1<<40), r.I64())
	require.True(t, r.Bool(), "any nonzero byte is true")
	require.Equal(t, k, r.Key())
	require.Equal(t, []byte{9, 8, 7}, r.Raw(3))

	require.NoError(t, r.Err())
	require.Equal(t, len(data), r.Offset())
	require.Zero(t, r.Remaining())
}

func TestReaderTruncatedFieldIsSticky(t *testing.T) {
	r := layout.NewReader(make([]byte, 10))
	r.U64()
	require.NoError(t, r.Err())

	require.Zero(t, r.U32())
	err := r.Err()
	require.Error(t, err)
	require.True(t, errors.Is(err, layout.ErrTruncatedField))

	var de *layout.DecodeError
	require.True(t, errors.As(err, &de))
	require.Equal(t, 8, de.Offset)
	require.Equal(t, 4, de.Width)
	require.Equal(t, 10, de.Actual)

	// The cursor does not move after a failure.
	require.Zero(t, r.U8())
	require.Equal(t, 8, r.Offset())
}

func TestReaderStrictReads(t *testing.T) {
	r := layout.NewReader([]byte{1, 0, 0})

	v, err := r.ReadU16()
	require.NoError(t, err)
	require.Equal(t, uint16(1), v)

	_, err = r.ReadU64()
	require.ErrorIs(t, err, layout.ErrTruncatedField)

	_, err = r.ReadKey()
	require.ErrorIs(t, err, layout.ErrTruncatedField)
}

func TestReaderSkip(t *testing.T) {
	data := testutil.NewBuilder(16).At(12).U32(99).Bytes()

	r, err := layout.NewReaderAt(data, layout.DiscriminatorSize)
	require.NoError(t, err)
	require.Equal(t, 8, r.Offset())

	r.Skip(4)
	require.Equal(t, uint32(99), r.U32())

	r.Skip(1)
	require.ErrorIs(t, r.Err(), layout.ErrTruncatedField)
}

func TestNewReaderAtPastEnd(t *testing.T) {
	_, err := layout.NewReaderAt(make([]byte, 4), layout.DiscriminatorSize)
	require.ErrorIs(t, err, layout.ErrTruncatedField)
}

func TestReaderRawCopies(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	r := layout.NewReader(data)
	out := r.Raw(4)
	data[0] = 0xff
	require.Equal(t, byte(1), out[0])
}

func BenchmarkReaderU64(b *testing.B) {
	data := testutil.Pattern(4096, 1)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		r := layout.NewReader(data)
		for r.Remaining() >= 8 {
			_ = r.U64()
		}
	}
}
