// Package feistel implements the bitfeistel block cipher: key expansion from
// a seed, a key-dependent number of Feistel rounds over bit half-blocks, and a
// final whole-block permutation followed by key whitening.
//
// The block size equals the key length. A message must be exactly as long as
// the key and of even length; nothing is padded or chained.
package feistel

import (
	"fmt"

	"bitfeistel/pkg/bitseq"
	"bitfeistel/pkg/log"
	"bitfeistel/pkg/permutation"
)

const subkeyRotation = 7

// Cipher is a key with its permutations and round subkeys precomputed. It is
// read-only after NewCipher returns and safe for concurrent use.
type Cipher struct {
	key     Key
	half    *permutation.Permutation
	full    *permutation.Permutation
	subkeys []bitseq.Sequence
}

// NewCipher prepares key for encryption and decryption.
func NewCipher(key Key) (*Cipher, error) {
	n := key.Len()
	if n < roundWindow || n%2 != 0 {
		return nil, fmt.Errorf("%w: key of %d bits, need an even length of at least %d", ErrInvalidInputLength, n, roundWindow)
	}
	half, err := permutation.Generate(n / 2)
	if err != nil {
		return nil, fmt.Errorf("feistel: half-block permutation: %w", err)
	}
	full, err := permutation.Generate(n)
	if err != nil {
		return nil, fmt.Errorf("feistel: block permutation: %w", err)
	}

	rounds := key.Rounds()
	subkeys := make([]bitseq.Sequence, rounds)
	for i := range subkeys {
		subkeys[i] = bitseq.RotateLeft(key.bits, i*subkeyRotation)[:n/2]
	}

	log.Debug().
		Str("key", key.Fingerprint()).
		Int("block_bits", n).
		Int("rounds", rounds).
		Msg("feistel: cipher initialised")

	return &Cipher{key: key, half: half, full: full, subkeys: subkeys}, nil
}

// BlockSize is the block length in bits.
func (c *Cipher) BlockSize() int { return c.key.Len() }

// Rounds is the number of Feistel rounds applied per block.
func (c *Cipher) Rounds() int { return len(c.subkeys) }

func (c *Cipher) checkLength(what string, block bitseq.Sequence) error {
	if len(block) != c.BlockSize() {
		return fmt.Errorf("%w: %s has %d bits, key has %d", ErrInvalidInputLength, what, len(block), c.BlockSize())
	}
	return block.Validate()
}

// Encrypt enciphers one block.
func (c *Cipher) Encrypt(plaintext bitseq.Sequence) (bitseq.Sequence, error) {
	if err := c.checkLength("plaintext", plaintext); err != nil {
		return nil, err
	}
	h := len(plaintext) / 2
	left, right := plaintext[:h].Clone(), plaintext[h:].Clone()

	for _, subkey := range c.subkeys {
		f := roundFunction(right, subkey, c.half)
		left, right = right, bitseq.Xor(left, f)
	}

	block := bitseq.Concat(left, right)
	return bitseq.Xor(c.full.Apply(block), c.key.bits), nil
}

// Decrypt inverts Encrypt under the same key.
func (c *Cipher) Decrypt(ciphertext bitseq.Sequence) (bitseq.Sequence, error) {
	if err := c.checkLength("ciphertext", ciphertext); err != nil {
		return nil, err
	}
	block := c.full.ApplyInverse(bitseq.Xor(ciphertext, c.key.bits))
	h := len(block) / 2
	left, right := block[:h], block[h:]

	for i := len(c.subkeys) - 1; i >= 0; i-- {
		f := roundFunction(left, c.subkeys[i], c.half)
		right, left = left, bitseq.Xor(right, f)
	}
	return bitseq.Concat(left, right), nil
}

// Encrypt is the one-shot form of NewCipher(key).Encrypt(plaintext).
func Encrypt(key Key, plaintext bitseq.Sequence) (bitseq.Sequence, error) {
	c, err := NewCipher(key)
	if err != nil {
		return nil, err
	}
	return c.Encrypt(plaintext)
}

// Decrypt is the one-shot form of NewCipher(key).Decrypt(ciphertext).
func Decrypt(key Key, ciphertext bitseq.Sequence) (bitseq.Sequence, error) {
	c, err := NewCipher(key)
	if err != nil {
		return nil, err
	}
	return c.Decrypt(ciphertext)
}
