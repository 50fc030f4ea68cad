package feistel

import (
	"bitfeistel/pkg/bitseq"
	"bitfeistel/pkg/permutation"
	"bitfeistel/pkg/sbox"
)

// roundFunction is F(half, subkey): key mixing, a prefix-XOR chain that
// carries every bit change rightwards, the S-box layer and finally the
// bit-position permutation.
func roundFunction(half, subkey bitseq.Sequence, perm *permutation.Permutation) bitseq.Sequence {
	mix := bitseq.Xor(half, subkey)
	for i := 1; i < len(mix); i++ {
		mix[i] ^= mix[i-1]
	}
	return perm.Apply(sbox.Substitute(mix))
}
