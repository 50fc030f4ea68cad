package bitseq

import "errors"

var (
	ErrInvalidBit     = errors.New("bitseq: invalid bit")
	ErrLengthMismatch = errors.New("bitseq: length mismatch")
	ErrNotByteAligned = errors.New("bitseq: length is not a multiple of 8")
)
