package feistel

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"

	"bitfeistel/pkg/bitseq"
	"bitfeistel/pkg/permutation"
)

func mustDecode(t *testing.T, s string) bitseq.Sequence {
	t.Helper()
	seq, err := bitseq.Decode(s)
	if err != nil {
		t.Fatalf("Decode(%q) failed: %v", s, err)
	}
	return seq
}

func mustKey(t *testing.T, seed bitseq.Sequence) Key {
	t.Helper()
	k, err := GenerateKey(seed)
	if err != nil {
		t.Fatalf("GenerateKey(%s) failed: %v", seed, err)
	}
	return k
}

func testRand(seed uint64) *rand.ChaCha8 {
	var s [32]byte
	s[0] = byte(seed)
	s[1] = byte(seed >> 8)
	return rand.NewChaCha8(s)
}

func TestKnownAnswer(t *testing.T) {
	tests := []struct {
		name       string
		seed       string
		key        string
		rounds     int
		plaintext  string
		ciphertext string
	}{
		{
			name:       "16-bit seed",
			seed:       "0xb72a",
			key:        "1011011100101010010010110001000001001011000101111010101011000000",
			rounds:     16,
			plaintext:  "0x0123456789abcdef",
			ciphertext: "0x72d0163bd28b4211",
		},
		{
			name:       "minimum seed",
			seed:       "1011",
			key:        "1011010000111100",
			rounds:     12 + 8%5,
			plaintext:  "0xa53c",
			ciphertext: "0110011000011100",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			key := mustKey(t, mustDecode(t, tc.seed))
			if key.String() != tc.key {
				t.Fatalf("Expected key %s, got %s", tc.key, key)
			}
			if key.Rounds() != tc.rounds {
				t.Errorf("Expected %d rounds, got %d", tc.rounds, key.Rounds())
			}
			m := mustDecode(t, tc.plaintext)
			c, err := Encrypt(key, m)
			if err != nil {
				t.Fatalf("Encrypt failed: %v", err)
			}
			if want := mustDecode(t, tc.ciphertext); !bitseq.Equal(c, want) {
				t.Fatalf("Expected ciphertext %s, got %s", want, c)
			}
			back, err := Decrypt(key, c)
			if err != nil {
				t.Fatalf("Decrypt failed: %v", err)
			}
			if !bitseq.Equal(back, m) {
				t.Errorf("Round trip mismatch: expected %s, got %s", m, back)
			}
		})
	}
}

func TestConcreteScenario(t *testing.T) {
	key := mustKey(t, bitseq.FromBytes([]byte{0xB7, 0x2A}))
	if key.Len() != 64 {
		t.Fatalf("Expected 64-bit key, got %d", key.Len())
	}
	m := bitseq.FromBytes([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x23, 0x45, 0x67})
	c, err := Encrypt(key, m)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if bitseq.Equal(c, m) {
		t.Errorf("Ciphertext equals plaintext")
	}
	back, err := Decrypt(key, c)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if !bitseq.Equal(back, m) {
		t.Errorf("Expected %s, got %s", m, back)
	}
}

func TestRoundTripRandom(t *testing.T) {
	r := testRand(1)
	for _, seedBits := range []int{4, 8, 12, 16, 24, 32} {
		for trial := 0; trial < 20; trial++ {
			seed, err := bitseq.Random(r, seedBits)
			if err != nil {
				t.Fatal(err)
			}
			key := mustKey(t, seed)
			c, err := NewCipher(key)
			if err != nil {
				t.Fatalf("NewCipher(%d bits) failed: %v", key.Len(), err)
			}
			m, err := bitseq.Random(r, key.Len())
			if err != nil {
				t.Fatal(err)
			}
			ct, err := c.Encrypt(m)
			if err != nil {
				t.Fatalf("Encrypt failed: %v", err)
			}
			pt, err := c.Decrypt(ct)
			if err != nil {
				t.Fatalf("Decrypt failed: %v", err)
			}
			if !bitseq.Equal(pt, m) {
				t.Fatalf("seed %s: expected %s, got %s", seed, m, pt)
			}
		}
	}
}

func TestGenerateKeyDeterministic(t *testing.T) {
	seed := mustDecode(t, "0x5a5a")
	k1 := mustKey(t, seed)
	k2 := mustKey(t, seed)
	if !bitseq.Equal(k1.Bits(), k2.Bits()) {
		t.Errorf("GenerateKey is not deterministic: %s vs %s", k1, k2)
	}
	if k1.Fingerprint() != k2.Fingerprint() {
		t.Errorf("Fingerprints differ for identical keys")
	}
	if !bitseq.Equal(k1.Bits()[:16], seed) {
		t.Errorf("Key does not start with the seed")
	}
}

func TestKeyIsImmutable(t *testing.T) {
	key := mustKey(t, mustDecode(t, "0xb72a"))
	bits := key.Bits()
	bits[0] ^= 1
	if key.Bits()[0] == bits[0] {
		t.Errorf("Mutating Bits() leaked into the key")
	}
}

func TestGenerateKeyErrors(t *testing.T) {
	for _, seed := range []bitseq.Sequence{nil, {}, {1, 0, 1}} {
		if _, err := GenerateKey(seed); !errors.Is(err, ErrInvalidInputLength) {
			t.Errorf("GenerateKey(%v): expected ErrInvalidInputLength, got %v", seed, err)
		}
	}
	if _, err := GenerateKey(bitseq.Sequence{1, 0, 2, 1}); !errors.Is(err, bitseq.ErrInvalidBit) {
		t.Errorf("Expected ErrInvalidBit, got %v", err)
	}
}

func TestKeyFromBits(t *testing.T) {
	orig := mustKey(t, mustDecode(t, "0xb72a"))
	k, err := KeyFromBits(orig.Bits())
	if err != nil {
		t.Fatalf("KeyFromBits failed: %v", err)
	}
	if k.String() != orig.String() || k.Rounds() != orig.Rounds() {
		t.Errorf("Rebuilt key differs")
	}
	if _, err := KeyFromBits(make(bitseq.Sequence, 15)); !errors.Is(err, ErrInvalidInputLength) {
		t.Errorf("Expected ErrInvalidInputLength, got %v", err)
	}
}

func TestRoundsRange(t *testing.T) {
	r := testRand(2)
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		seed, _ := bitseq.Random(r, 16)
		n := mustKey(t, seed).Rounds()
		if n < 12 || n > 16 {
			t.Fatalf("Round count %d out of range", n)
		}
		seen[n] = true
	}
	if len(seen) < 3 {
		t.Errorf("Round counts show little variety: %v", seen)
	}
}

func TestInputLengthErrors(t *testing.T) {
	key := mustKey(t, mustDecode(t, "0xb72a"))
	for _, n := range []int{0, 32, 63, 65, 128} {
		m := make(bitseq.Sequence, n)
		if _, err := Encrypt(key, m); !errors.Is(err, ErrInvalidInputLength) {
			t.Errorf("Encrypt(%d bits): expected ErrInvalidInputLength, got %v", n, err)
		}
		if _, err := Decrypt(key, m); !errors.Is(err, ErrInvalidInputLength) {
			t.Errorf("Decrypt(%d bits): expected ErrInvalidInputLength, got %v", n, err)
		}
	}
	if _, err := Encrypt(Key{}, nil); !errors.Is(err, ErrInvalidInputLength) {
		t.Errorf("Zero key: expected ErrInvalidInputLength, got %v", err)
	}
	odd, err := KeyFromBits(make(bitseq.Sequence, 17))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewCipher(odd); !errors.Is(err, ErrInvalidInputLength) {
		t.Errorf("Odd key: expected ErrInvalidInputLength, got %v", err)
	}
}

func TestDegeneratePermutationSurfaces(t *testing.T) {
	// A 13-bit seed gives a 52-bit block whose halves are 26 bits, both
	// multiples of the affine step.
	seed := make(bitseq.Sequence, 13)
	seed[0] = 1
	key := mustKey(t, seed)
	if _, err := Encrypt(key, make(bitseq.Sequence, key.Len())); !errors.Is(err, permutation.ErrDegeneratePermutation) {
		t.Errorf("Expected ErrDegeneratePermutation, got %v", err)
	}
}

func TestRoundFunction(t *testing.T) {
	perm, err := permutation.Generate(8)
	if err != nil {
		t.Fatal(err)
	}
	half := mustDecode(t, "0xf0")
	subkey := mustDecode(t, "0x3c")
	got := roundFunction(half, subkey, perm)
	if got.String() != "01100110" {
		t.Errorf("Expected 01100110, got %s", got)
	}
	if half.String() != "11110000" || subkey.String() != "00111100" {
		t.Errorf("roundFunction modified its inputs")
	}
}

func TestCipherConcurrentUse(t *testing.T) {
	key := mustKey(t, mustDecode(t, "0xb72a"))
	c, err := NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	m := mustDecode(t, "0x0123456789abcdef")
	want, _ := c.Encrypt(m)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.Encrypt(m)
			if err != nil {
				errs <- err
				return
			}
			if !bitseq.Equal(got, want) {
				errs <- errors.New("concurrent encryption diverged")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestNewBlock(t *testing.T) {
	key := mustKey(t, mustDecode(t, "0xb72a"))
	b, err := NewBlock(key)
	if err != nil {
		t.Fatalf("NewBlock failed: %v", err)
	}
	if b.BlockSize() != 8 {
		t.Fatalf("Expected 8-byte blocks, got %d", b.BlockSize())
	}
	src := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}
	dst := make([]byte, 8)
	b.Encrypt(dst, src)
	if !bytes.Equal(dst, []byte{0x72, 0xd0, 0x16, 0x3b, 0xd2, 0x8b, 0x42, 0x11}) {
		t.Errorf("Unexpected ciphertext %x", dst)
	}
	back := make([]byte, 8)
	b.Decrypt(back, dst)
	if !bytes.Equal(back, src) {
		t.Errorf("Expected %x, got %x", src, back)
	}
}

func TestNewBlockUnaligned(t *testing.T) {
	key := mustKey(t, mustDecode(t, "10110")) // 20-bit key
	if _, err := NewBlock(key); !errors.Is(err, ErrInvalidInputLength) {
		t.Errorf("Expected ErrInvalidInputLength, got %v", err)
	}
}

func TestSeedFromPassphrase(t *testing.T) {
	a, err := SeedFromPassphrase("correct horse", 16)
	if err != nil {
		t.Fatalf("SeedFromPassphrase failed: %v", err)
	}
	b, _ := SeedFromPassphrase("correct horse", 16)
	c, _ := SeedFromPassphrase("battery staple", 16)
	if len(a) != 16 {
		t.Fatalf("Expected 16 bits, got %d", len(a))
	}
	if !bitseq.Equal(a, b) {
		t.Errorf("Derivation is not deterministic")
	}
	if bitseq.Equal(a, c) {
		t.Errorf("Different passphrases gave the same seed")
	}
	if _, err := SeedFromPassphrase("x", 2); !errors.Is(err, ErrInvalidInputLength) {
		t.Errorf("Expected ErrInvalidInputLength, got %v", err)
	}
}
