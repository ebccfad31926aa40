package layout

import (
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Reader is a cursor over an immutable account buffer. Every read is
// bounds-checked before it consumes bytes and all integers are little-endian.
//
// The short methods (U8, U64, Key, ...) keep the first failure and turn every
// later read into a no-op returning the zero value, so a decoder can read a
// whole layout and check Err once. The Read* methods return the error of the
// same read directly.
//
// A Reader is not safe for concurrent use; create one per decode.
type Reader struct {
	dec    *bin.Decoder
	size   int
	schema SchemaID
	err    error
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{
		dec:  bin.NewBorshDecoder(data),
		size: len(data),
	}
}

// NewReaderAt returns a Reader positioned at offset, typically 0 or
// DiscriminatorSize.
func NewReaderAt(data []byte, offset int) (*Reader, error) {
	r := NewReader(data)
	r.Skip(offset)
	if err := r.Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// Offset returns the cursor position.
func (r *Reader) Offset() int { return int(r.dec.Position()) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return r.size - r.Offset() }

// Len returns the buffer length.
func (r *Reader) Len() int { return r.size }

// Err returns the first failure, if any.
func (r *Reader) Err() error { return r.err }

func (r *Reader) need(width int) bool {
	if r.err != nil {
		return false
	}
	if width < 0 || r.Remaining() < width {
		r.err = NewTruncatedField(r.schema, r.Offset(), width, r.size)
		return false
	}
	return true
}

func (r *Reader) fail(width int, cause error) {
	r.err = NewTruncatedField(r.schema, r.Offset(), width, r.size).WithDetails("%v", cause)
}

func read[T any](r *Reader, width int, fn func() (T, error)) T {
	var zero T
	if !r.need(width) {
		return zero
	}
	v, err := fn()
	if err != nil {
		r.fail(width, err)
		return zero
	}
	return v
}

// Skip advances the cursor by n bytes without reading them.
func (r *Reader) Skip(n int) {
	if !r.need(n) {
		return
	}
	if err := r.dec.SkipBytes(uint(n)); err != nil {
		r.fail(n, err)
	}
}

// U8 reads an unsigned 8-bit integer.
func (r *Reader) U8() uint8 {
	return read(r, 1, r.dec.ReadUint8)
}

// U16 reads a little-endian unsigned 16-bit integer.
func (r *Reader) U16() uint16 {
	return read(r, 2, func() (uint16, error) { return r.dec.ReadUint16(binary.LittleEndian) })
}

// U32 reads a little-endian unsigned 32-bit integer.
func (r *Reader) U32() uint32 {
	return read(r, 4, func() (uint32, error) { return r.dec.ReadUint32(binary.LittleEndian) })
}

// U64 reads a little-endian unsigned 64-bit integer.
func (r *Reader) U64() uint64 {
	return read(r, 8, func() (uint64, error) { return r.dec.ReadUint64(binary.LittleEndian) })
}

// U128 reads a little-endian unsigned 128-bit integer.
func (r *Reader) U128() bin.Uint128 {
	return read(r, 16, func() (bin.Uint128, error) { return r.dec.ReadUint128(binary.LittleEndian) })
}

// I32 reads a little-endian signed 32-bit integer.
func (r *Reader) I32() int32 {
	return read(r, 4, func() (int32, error) { return r.dec.ReadInt32(binary.LittleEndian) })
}

// I64 reads a little-endian signed 64-bit integer.
func (r *Reader) I64() int64 {
	return read(r, 8, func() (int64, error) { return r.dec.ReadInt64(binary.LittleEndian) })
}

// Bool reads one byte; any nonzero value is true.
func (r *Reader) Bool() bool {
	return r.U8() != 0
}

// Key reads a 32-byte public key.
func (r *Reader) Key() solana.PublicKey {
	return read(r, KeySize, func() (solana.PublicKey, error) {
		b, err := r.dec.ReadNBytes(KeySize)
		if err != nil {
			return solana.PublicKey{}, err
		}
		return solana.PublicKeyFromBytes(b), nil
	})
}

// Raw reads n bytes and returns a copy of them.
func (r *Reader) Raw(n int) []byte {
	return read(r, n, func() ([]byte, error) {
		b, err := r.dec.ReadNBytes(n)
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(b))
		copy(out, b)
		return out, nil
	})
}

// Bytes fills dst from the buffer.
func (r *Reader) Bytes(dst []byte) {
	if b := r.Raw(len(dst)); b != nil {
		copy(dst, b)
	}
}

// ReadU8 reads an unsigned 8-bit integer.
func (r *Reader) ReadU8() (uint8, error) { v := r.U8(); return v, r.err }

// ReadU16 reads a little-endian unsigned 16-bit integer.
func (r *Reader) ReadU16() (uint16, error) { v := r.U16(); return v, r.err }

// ReadU32 reads a little-endian unsigned 32-bit integer.
func (r *Reader) ReadU32() (uint32, error) { v := r.U32(); return v, r.err }

// ReadU64 reads a little-endian unsigned 64-bit integer.
func (r *Reader) ReadU64() (uint64, error) { v := r.U64(); return v, r.err }

// ReadU128 reads a little-endian unsigned 128-bit integer.
func (r *Reader) ReadU128() (bin.Uint128, error) { v := r.U128(); return v, r.err }

// ReadI32 reads a little-endian signed 32-bit integer.
func (r *Reader) ReadI32() (int32, error) { v := r.I32(); return v, r.err }

// ReadI64 reads a little-endian signed 64-bit integer.
func (r *Reader) ReadI64() (int64, error) { v := r.I64(); return v, r.err }

// ReadBool reads one byte as a boolean.
func (r *Reader) ReadBool() (bool, error) { v := r.Bool(); return v, r.err }

// ReadKey reads a 32-byte public key.
func (r *Reader) ReadKey() (solana.PublicKey, error) { v := r.Key(); return v, r.err }

// ReadRaw reads n bytes.
func (r *Reader) ReadRaw(n int) ([]byte, error) { v := r.Raw(n); return v, r.err }
