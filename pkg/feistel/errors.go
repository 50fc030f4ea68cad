package feistel

import "errors"

var (
	ErrInvalidInputLength = errors.New("feistel: invalid input length")
	ErrShortBlock         = errors.New("feistel: buffer shorter than one block")
)
