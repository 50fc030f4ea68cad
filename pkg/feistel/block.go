package feistel

import (
	"crypto/cipher"
	"fmt"

	"bitfeistel/pkg/bitseq"
)

// byteBlock adapts a Cipher to crypto/cipher.Block over packed bytes, most
// significant bit first.
type byteBlock struct {
	c *Cipher
}

// NewBlock returns a cipher.Block for key. The key length must be a multiple
// of 8 so that a block is a whole number of bytes.
func NewBlock(key Key) (cipher.Block, error) {
	if key.Len()%8 != 0 {
		return nil, fmt.Errorf("%w: key of %d bits is not byte aligned", ErrInvalidInputLength, key.Len())
	}
	c, err := NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &byteBlock{c: c}, nil
}

func (b *byteBlock) BlockSize() int { return b.c.BlockSize() / 8 }

func (b *byteBlock) Encrypt(dst, src []byte) { b.crypt(dst, src, b.c.Encrypt) }

func (b *byteBlock) Decrypt(dst, src []byte) { b.crypt(dst, src, b.c.Decrypt) }

func (b *byteBlock) crypt(dst, src []byte, fn func(bitseq.Sequence) (bitseq.Sequence, error)) {
	n := b.BlockSize()
	if len(src) < n || len(dst) < n {
		panic(ErrShortBlock)
	}
	out, err := fn(bitseq.FromBytes(src[:n]))
	if err != nil {
		// Lengths are fixed above, so this is unreachable for packed input.
		panic(err)
	}
	copy(dst, out.Pack())
}
