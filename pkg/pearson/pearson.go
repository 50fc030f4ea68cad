// Package pearson implements Pearson hashing as described in
// Peter K. Pearson's 1990 paper "Fast Hashing of Variable-Length Data".
// Hash produces an 8-bit digest; Hash64 runs eight independent passes with
// seeds 0..7 and concatenates them.
//
// The 256-entry table is derived from the cipher's own layers: the affine
// permutation of size 256 followed by the S-box on both nibbles. Both steps
// are bijections, so the table is a permutation of 0..255 as Pearson
// hashing requires.
package pearson

import (
	"bitfeistel/pkg/permutation"
	"bitfeistel/pkg/sbox"
)

var table [256]uint8

func init() {
	p, err := permutation.Generate(256)
	if err != nil {
		panic(err)
	}
	for i, v := range p.Forward() {
		table[i] = sbox.Lookup(uint8(v>>4))<<4 | sbox.Lookup(uint8(v&0xF))
	}
}

// Hash computes the 8-bit Pearson hash of data. Empty input hashes to 0.
func Hash(data []byte) uint8 {
	if len(data) == 0 {
		return 0
	}
	return hashSeeded(0, data)
}

// Hash64 concatenates eight seeded 8-bit hashes, first seed in the top byte.
func Hash64(data []byte) uint64 {
	var h uint64
	for seed := 0; seed < 8; seed++ {
		h = (h << 8) | uint64(hashSeeded(uint8(seed), data))
	}
	return h
}

func hashSeeded(seed uint8, data []byte) uint8 {
	h := table[seed]
	for _, b := range data {
		h = table[h^b]
	}
	return h
}
