package transform

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// hexTransform armors binary payloads as lowercase hex text.
type hexTransform struct{}

func NewHexTransform() Transform { return &hexTransform{} }

func (h *hexTransform) Apply(data []byte) ([]byte, error) {
	out := make([]byte, hex.EncodedLen(len(data)))
	hex.Encode(out, data)
	return out, nil
}

func (h *hexTransform) Reverse(data []byte) ([]byte, error) {
	s := strings.TrimPrefix(strings.TrimSpace(string(data)), "0x")
	out, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("hex reverse (decode): %w", err)
	}
	return out, nil
}
