// Package permutation builds the affine bit-position permutation used by the
// round function and by the whole-block whitening step.
//
// Position i is mapped through (i*Step + Offset) mod n. The mapping is a
// bijection exactly when gcd(Step, n) == 1; any other size is rejected at
// construction time instead of producing a lossy inverse.
package permutation

import (
	"fmt"

	"bitfeistel/pkg/bitseq"
)

const (
	Step   = 13
	Offset = 5
)

// Permutation is an immutable index mapping over [0, n) together with its
// inverse.
type Permutation struct {
	forward []int
	inverse []int
}

// Generate returns the affine permutation of size n.
func Generate(n int) (*Permutation, error) {
	if n < 0 || gcd(Step, n) != 1 {
		return nil, fmt.Errorf("%w: size %d shares a factor with step %d", ErrDegeneratePermutation, n, Step)
	}

	forward := make([]int, n)
	for i := range forward {
		forward[i] = (i*Step + Offset) % n
	}

	inverse := make([]int, n)
	seen := make([]bool, n)
	for i, p := range forward {
		if seen[p] {
			return nil, fmt.Errorf("%w: index %d reached twice", ErrDegeneratePermutation, p)
		}
		seen[p] = true
		inverse[p] = i
	}
	return &Permutation{forward: forward, inverse: inverse}, nil
}

// Size is the number of positions permuted.
func (p *Permutation) Size() int { return len(p.forward) }

// Forward returns a copy of the forward table.
func (p *Permutation) Forward() []int { return append([]int(nil), p.forward...) }

// Inverse returns a copy of the inverse table.
func (p *Permutation) Inverse() []int { return append([]int(nil), p.inverse...) }

// Apply gathers bits through the forward table: out[i] = bits[perm[i]].
func (p *Permutation) Apply(bits bitseq.Sequence) bitseq.Sequence {
	return gather(bits, p.forward)
}

// ApplyInverse undoes Apply.
func (p *Permutation) ApplyInverse(bits bitseq.Sequence) bitseq.Sequence {
	return gather(bits, p.inverse)
}

func gather(bits bitseq.Sequence, table []int) bitseq.Sequence {
	if len(bits) != len(table) {
		panic(fmt.Sprintf("permutation: %d bits through a permutation of size %d", len(bits), len(table)))
	}
	out := make(bitseq.Sequence, len(table))
	for i, src := range table {
		out[i] = bits[src]
	}
	return out
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
