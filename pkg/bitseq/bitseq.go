// Package bitseq implements fixed-length bit sequences, one bit per element.
// Every value the cipher touches (seeds, keys, blocks and half-blocks) is a
// Sequence; element values are always 0 or 1.
package bitseq

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Sequence is an ordered run of single-bit values.
type Sequence []uint8

// Xor returns the elementwise XOR of a and b.
// It panics if the lengths differ, like crypto/subtle.XORBytes; callers
// validate lengths before reaching the primitives.
func Xor(a, b Sequence) Sequence {
	if len(a) != len(b) {
		panic(fmt.Sprintf("bitseq: xor of sequences with lengths %d and %d", len(a), len(b)))
	}
	out := make(Sequence, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// RotateLeft returns bits rotated left by k mod len(bits) positions.
// An empty sequence is returned as is.
func RotateLeft(bits Sequence, k int) Sequence {
	n := len(bits)
	if n == 0 {
		return bits
	}
	k = ((k % n) + n) % n
	out := make(Sequence, 0, n)
	out = append(out, bits[k:]...)
	return append(out, bits[:k]...)
}

// Clone returns a copy of s.
func (s Sequence) Clone() Sequence {
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// Concat returns a new sequence holding a followed by b.
func Concat(a, b Sequence) Sequence {
	out := make(Sequence, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// Sum counts the set bits.
func (s Sequence) Sum() int {
	n := 0
	for _, b := range s {
		n += int(b)
	}
	return n
}

// Equal reports whether a and b hold the same bits.
func Equal(a, b Sequence) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Distance returns the Hamming distance between a and b.
func Distance(a, b Sequence) (int, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(a), len(b))
	}
	d := 0
	for i := range a {
		if a[i] != b[i] {
			d++
		}
	}
	return d, nil
}

// Flip returns a copy of s with bit i inverted.
func (s Sequence) Flip(i int) Sequence {
	out := s.Clone()
	out[i] ^= 1
	return out
}

// Validate checks that every element is 0 or 1.
func (s Sequence) Validate() error {
	for i, b := range s {
		if b > 1 {
			return fmt.Errorf("%w: value %d at position %d", ErrInvalidBit, b, i)
		}
	}
	return nil
}

// FromBytes expands data into bits, most significant bit of each byte first.
func FromBytes(data []byte) Sequence {
	out := make(Sequence, 0, len(data)*8)
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			out = append(out, (b>>i)&1)
		}
	}
	return out
}

// Pack folds s into bytes, most significant bit first. A trailing partial
// byte is padded with zero bits.
func (s Sequence) Pack() []byte {
	out := make([]byte, (len(s)+7)/8)
	for i, b := range s {
		out[i/8] |= (b & 1) << (7 - i%8)
	}
	return out
}

// Bytes is Pack for byte-aligned sequences; it refuses to pad.
func (s Sequence) Bytes() ([]byte, error) {
	if len(s)%8 != 0 {
		return nil, fmt.Errorf("%w: %d bits", ErrNotByteAligned, len(s))
	}
	return s.Pack(), nil
}

// Parse reads a string of '0' and '1' characters. Spaces and underscores are
// ignored so long values can be grouped.
func Parse(str string) (Sequence, error) {
	out := make(Sequence, 0, len(str))
	for i, r := range str {
		switch r {
		case '0':
			out = append(out, 0)
		case '1':
			out = append(out, 1)
		case ' ', '_':
		default:
			return nil, fmt.Errorf("%w: %q at offset %d", ErrInvalidBit, r, i)
		}
	}
	return out, nil
}

// Decode accepts either a "0x"-prefixed hex string (expanded MSB first) or a
// plain bit string.
func Decode(str string) (Sequence, error) {
	str = strings.TrimSpace(str)
	if h, ok := strings.CutPrefix(str, "0x"); ok {
		data, err := hex.DecodeString(h)
		if err != nil {
			return nil, fmt.Errorf("bitseq: invalid hex: %w", err)
		}
		return FromBytes(data), nil
	}
	return Parse(str)
}

func (s Sequence) String() string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, b := range s {
		sb.WriteByte('0' + b)
	}
	return sb.String()
}

// Random reads n bits from r.
func Random(r io.Reader, n int) (Sequence, error) {
	buf := make([]byte, (n+7)/8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("bitseq: failed to read %d random bytes: %w", len(buf), err)
	}
	return FromBytes(buf)[:n], nil
}
