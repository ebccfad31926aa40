package layout

import "fmt"

// LengthMode selects how a buffer length is compared with a schema size.
type LengthMode uint8

const (
	// ModeExact requires the length to equal the schema size.
	ModeExact LengthMode = iota

	// ModeAtLeast requires the length to be at least the schema size.
	ModeAtLeast
)

// Tail describes fixed-size records repeated after a fixed header.
type Tail struct {
	// Header is the number of bytes before the first record.
	Header int

	// Record is the size of one tail record.
	Record int
}

// Count returns how many whole records fit after the header of an n-byte buffer.
func (t Tail) Count(n int) int {
	if t.Record <= 0 || n <= t.Header {
		return 0
	}
	return (n - t.Header) / t.Record
}

// LengthPolicy is the length requirement of one schema.
type LengthPolicy struct {
	Mode LengthMode
	Size int

	// Tail is set for schemas whose remainder must be whole records.
	Tail *Tail
}

// Exact returns a policy requiring exactly n bytes.
func Exact(n int) LengthPolicy {
	return LengthPolicy{Mode: ModeExact, Size: n}
}

// AtLeast returns a policy requiring n or more bytes.
func AtLeast(n int) LengthPolicy {
	return LengthPolicy{Mode: ModeAtLeast, Size: n}
}

// WithTail returns a copy of p that also requires the bytes after header
// to be an exact multiple of record.
func (p LengthPolicy) WithTail(header, record int) LengthPolicy {
	p.Tail = &Tail{Header: header, Record: record}
	return p
}

// Accepts reports whether an n-byte buffer satisfies the policy.
func (p LengthPolicy) Accepts(n int) bool {
	return p.Check(SchemaUnknown, n) == nil
}

// Check returns a LengthMismatch error if an n-byte buffer fails the policy.
func (p LengthPolicy) Check(schema SchemaID, n int) error {
	switch p.Mode {
	case ModeAtLeast:
		if n < p.Size {
			return NewLengthMismatch(schema, p, n)
		}
	default:
		if n != p.Size {
			return NewLengthMismatch(schema, p, n)
		}
	}

	if t := p.Tail; t != nil {
		rem := n - t.Header
		if rem < 0 || t.Record <= 0 || rem%t.Record != 0 {
			return NewLengthMismatch(schema, p, n).
				WithDetails("%d bytes after %d-byte header is not a multiple of %d", rem, t.Header, t.Record)
		}
	}
	return nil
}

// String renders the policy, e.g. "== 1544" or ">= 752".
func (p LengthPolicy) String() string {
	op := "=="
	if p.Mode == ModeAtLeast {
		op = ">="
	}
	s := fmt.Sprintf("%s %d", op, p.Size)
	if p.Tail != nil {
		s += fmt.Sprintf(" (%d + n*%d)", p.Tail.Header, p.Tail.Record)
	}
	return s
}

// Open checks data against policy and returns a Reader positioned at offset.
// The reader tags any TruncatedField error with schema.
func Open(schema SchemaID, policy LengthPolicy, data []byte, offset int) (*Reader, error) {
	if err := policy.Check(schema, len(data)); err != nil {
		return nil, err
	}
	r := NewReader(data)
	r.schema = schema
	r.Skip(offset)
	if err := r.Err(); err != nil {
		return nil, err
	}
	return r, nil
}
