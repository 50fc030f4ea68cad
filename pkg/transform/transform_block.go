package transform

import (
	"crypto/cipher"
	"fmt"

	"bitfeistel/pkg/feistel"
)

// blockTransform enciphers exactly one cipher block per payload. Longer
// payloads are refused: there is no chaining mode.
type blockTransform struct{ block cipher.Block }

func NewBlockTransform(key feistel.Key) (Transform, error) {
	b, err := feistel.NewBlock(key)
	if err != nil {
		return nil, fmt.Errorf("block: %w", err)
	}
	return &blockTransform{block: b}, nil
}

func (t *blockTransform) check(op string, data []byte) error {
	if len(data) != t.block.BlockSize() {
		return fmt.Errorf("block %s: %w: payload of %d bytes, block is %d bytes",
			op, feistel.ErrInvalidInputLength, len(data), t.block.BlockSize())
	}
	return nil
}

func (t *blockTransform) Apply(plaintext []byte) ([]byte, error) {
	if err := t.check("apply (encrypt)", plaintext); err != nil {
		return nil, err
	}
	out := make([]byte, len(plaintext))
	t.block.Encrypt(out, plaintext)
	return out, nil
}

func (t *blockTransform) Reverse(ciphertext []byte) ([]byte, error) {
	if err := t.check("reverse (decrypt)", ciphertext); err != nil {
		return nil, err
	}
	out := make([]byte, len(ciphertext))
	t.block.Decrypt(out, ciphertext)
	return out, nil
}
