package feistel

import (
	"fmt"

	"bitfeistel/pkg/bitseq"
	"bitfeistel/pkg/pearson"
)

const (
	// MinSeedBits keeps the expanded key at least roundWindow bits long so the
	// round count always reads a full window.
	MinSeedBits = 4

	expansionFactor = 4
	saltStride      = 3
	growthRotation  = 3

	roundBase   = 12
	roundSpread = 5
	roundWindow = 16
)

// Key is expanded key material. It is immutable: accessors hand out copies.
type Key struct {
	bits bitseq.Sequence
}

// GenerateKey deterministically expands seed into a key four times its
// length. No randomness is consumed.
func GenerateKey(seed bitseq.Sequence) (Key, error) {
	l := len(seed)
	if l < MinSeedBits {
		return Key{}, fmt.Errorf("%w: seed has %d bits, need at least %d", ErrInvalidInputLength, l, MinSeedBits)
	}
	if err := seed.Validate(); err != nil {
		return Key{}, err
	}
	target := expansionFactor * l

	saltBase := bitseq.RotateLeft(seed, seed.Sum()%l).Clone()
	for i := range saltBase {
		saltBase[i] ^= seed[(i*saltStride)%l]
	}
	salt := make(bitseq.Sequence, 0, target+l)
	for range target/l + 1 {
		salt = append(salt, saltBase...)
	}

	k := seed.Clone()
	for len(k) < target {
		block := bitseq.Xor(k, salt[:len(k)])
		k = append(k, bitseq.RotateLeft(block, growthRotation)...)
	}
	return Key{bits: k[:target:target]}, nil
}

// KeyFromBits wraps existing key material, for example a key printed by an
// earlier run.
func KeyFromBits(bits bitseq.Sequence) (Key, error) {
	if len(bits) < roundWindow {
		return Key{}, fmt.Errorf("%w: key has %d bits, need at least %d", ErrInvalidInputLength, len(bits), roundWindow)
	}
	if err := bits.Validate(); err != nil {
		return Key{}, err
	}
	return Key{bits: bits.Clone()}, nil
}

// Bits returns a copy of the key material.
func (k Key) Bits() bitseq.Sequence { return k.bits.Clone() }

// Len is the key length in bits, which is also the block size it serves.
func (k Key) Len() int { return len(k.bits) }

// Rounds is 12 plus the popcount of the first 16 key bits, mod 5.
func (k Key) Rounds() int {
	return roundBase + k.bits[:roundWindow].Sum()%roundSpread
}

// Fingerprint identifies a key in logs and reports without revealing it.
func (k Key) Fingerprint() string {
	data := append(k.bits.Pack(), byte(len(k.bits)), byte(len(k.bits)>>8))
	return fmt.Sprintf("%016x", pearson.Hash64(data))
}

func (k Key) String() string { return k.bits.String() }
