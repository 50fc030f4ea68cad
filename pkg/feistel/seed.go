package feistel

import (
	"crypto/sha256"
	"fmt"

	"bitfeistel/pkg/bitseq"

	"golang.org/x/crypto/hkdf"
)

const seedInfo = "bitfeistel seed v1"

// SeedFromPassphrase derives a seed of the requested length from a
// passphrase with HKDF-SHA256.
func SeedFromPassphrase(passphrase string, bits int) (bitseq.Sequence, error) {
	if bits < MinSeedBits {
		return nil, fmt.Errorf("%w: seed of %d bits requested, need at least %d", ErrInvalidInputLength, bits, MinSeedBits)
	}
	r := hkdf.New(sha256.New, []byte(passphrase), nil, []byte(seedInfo))
	seed, err := bitseq.Random(r, bits)
	if err != nil {
		return nil, fmt.Errorf("feistel: seed derivation failed: %w", err)
	}
	return seed, nil
}
