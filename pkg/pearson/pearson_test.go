package pearson

import (
	"testing"
)

func TestTableIsPermutation(t *testing.T) {
	var seen [256]bool
	for i, v := range table {
		if seen[v] {
			t.Fatalf("Value %d appears twice (second at index %d)", v, i)
		}
		seen[v] = true
	}
}

func TestHashEmpty(t *testing.T) {
	if h := Hash([]byte{}); h != 0 {
		t.Errorf("Expected hash of empty slice to be 0, got %d", h)
	}
}

func TestHashConsistency(t *testing.T) {
	data := []byte("The quick brown fox jumps over the lazy dog")
	h1 := Hash(data)
	h2 := Hash(data)
	if h1 != h2 {
		t.Errorf("Hash is inconsistent: %d vs %d", h1, h2)
	}
}

func TestHash64(t *testing.T) {
	a := Hash64([]byte{0xB7, 0x2A})
	b := Hash64([]byte{0xB7, 0x2B})
	if a == 0 {
		t.Errorf("Expected non-zero 64-bit hash, got %d", a)
	}
	if a == b {
		t.Errorf("Single-bit change did not alter the hash: %x", a)
	}
	if Hash64(nil) == Hash64([]byte{0}) {
		t.Errorf("Empty input collides with a zero byte")
	}
}
