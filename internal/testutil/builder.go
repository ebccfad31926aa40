// Package testutil holds fixture helpers shared by decoder tests.
package testutil

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Builder writes little-endian fields into a fixed-size buffer.
// Writes past the end of the buffer panic, which fails the calling test.
type Builder struct {
	buf []byte
	off int
}

// NewBuilder returns a Builder over a zeroed buffer of size bytes.
func NewBuilder(size int) *Builder {
	return &Builder{buf: make([]byte, size)}
}

// At moves the cursor to an absolute offset.
func (b *Builder) At(off int) *Builder { b.off = off; return b }

// Skip advances the cursor by n bytes.
func (b *Builder) Skip(n int) *Builder { b.off += n; return b }

// Offset returns the cursor position.
func (b *Builder) Offset() int { return b.off }

func (b *Builder) U8(v uint8) *Builder {
	b.buf[b.off] = v
	b.off++
	return b
}

func (b *Builder) Bool(v bool) *Builder {
	if v {
		return b.U8(1)
	}
	return b.U8(0)
}

func (b *Builder) U16(v uint16) *Builder {
	binary.LittleEndian.PutUint16(b.buf[b.off:], v)
	b.off += 2
	return b
}

func (b *Builder) U32(v uint32) *Builder {
	binary.LittleEndian.PutUint32(b.buf[b.off:], v)
	b.off += 4
	return b
}

func (b *Builder) U64(v uint64) *Builder {
	binary.LittleEndian.PutUint64(b.buf[b.off:], v)
	b.off += 8
	return b
}

func (b *Builder) I32(v int32) *Builder { return b.U32(uint32(v)) }

func (b *Builder) I64(v int64) *Builder { return b.U64(uint64(v)) }

// U128 writes a 128-bit integer as its low and high halves.
func (b *Builder) U128(lo, hi uint64) *Builder {
	return b.U64(lo).U64(hi)
}

func (b *Builder) Key(k solana.PublicKey) *Builder {
	return b.Raw(k[:])
}

// Raw copies p at the cursor.
func (b *Builder) Raw(p []byte) *Builder {
	if b.off+len(p) > len(b.buf) {
		panic("testutil: write past end of buffer")
	}
	copy(b.buf[b.off:], p)
	b.off += len(p)
	return b
}

// Bytes returns the buffer.
func (b *Builder) Bytes() []byte { return b.buf }

// Key returns a key whose 32 bytes are all n.
func Key(n byte) solana.PublicKey {
	var k solana.PublicKey
	for i := range k {
		k[i] = n
	}
	return k
}

// Pattern returns size deterministic pseudo-random bytes derived from seed.
func Pattern(size int, seed uint32) []byte {
	out := make([]byte, size)
	x := seed | 1
	for i := range out {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		out[i] = byte(x)
	}
	return out
}
