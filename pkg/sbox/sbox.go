// Package sbox holds the fixed 4-bit substitution table of the round
// function.
package sbox

import (
	"fmt"

	"bitfeistel/pkg/bitseq"
)

// NibbleSize is the number of bits substituted as one unit.
const NibbleSize = 4

// The table must be a permutation of 0..15; init refuses to run otherwise.
var table = [16]uint8{
	0xE, 0x4, 0xD, 0x1,
	0x2, 0xF, 0xB, 0x8,
	0x3, 0xA, 0x6, 0xC,
	0x5, 0x9, 0x0, 0x7,
}

func init() {
	if err := Validate(table); err != nil {
		panic(err)
	}
}

// Validate reports ErrMalformedTable unless t maps [0,16) onto itself.
func Validate(t [16]uint8) error {
	var seen [16]bool
	for i, v := range t {
		if v > 15 {
			return fmt.Errorf("%w: entry %d is %d", ErrMalformedTable, i, v)
		}
		if seen[v] {
			return fmt.Errorf("%w: value %d appears twice", ErrMalformedTable, v)
		}
		seen[v] = true
	}
	return nil
}

// Table returns a copy of the substitution table.
func Table() [16]uint8 { return table }

// Lookup substitutes a single nibble value.
func Lookup(v uint8) uint8 { return table[v&0xF] }

// Substitute replaces every full 4-bit group of bits (first bit most
// significant) with its table entry. A trailing group shorter than four bits
// is copied through untouched.
func Substitute(bits bitseq.Sequence) bitseq.Sequence {
	out := make(bitseq.Sequence, len(bits))
	full := len(bits) - len(bits)%NibbleSize
	for i := 0; i < full; i += NibbleSize {
		v := bits[i]<<3 | bits[i+1]<<2 | bits[i+2]<<1 | bits[i+3]
		s := table[v]
		out[i] = (s >> 3) & 1
		out[i+1] = (s >> 2) & 1
		out[i+2] = (s >> 1) & 1
		out[i+3] = s & 1
	}
	copy(out[full:], bits[full:])
	return out
}
