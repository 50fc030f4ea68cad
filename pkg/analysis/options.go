package analysis

import (
	"crypto/rand"
	"fmt"
	"io"
	"runtime"

	"bitfeistel/pkg/feistel"
	"bitfeistel/pkg/permutation"
)

// Options configures an analysis run. Messages are always 4*SeedBits long
// because the block size equals the expanded key length.
type Options struct {
	SeedBits        int
	Iterations      int
	CollisionKeys   int
	DiffusionTrials int
	ConfusionTrials int
	CompressBlocks  int
	Workers         int

	// Rand feeds seeds, messages and flipped-bit positions. It is only read
	// from the calling goroutine, so a deterministic non thread-safe source is
	// fine.
	Rand io.Reader
}

// DefaultOptions mirrors the classic harness: 16-bit seeds, 64-bit blocks.
func DefaultOptions() *Options {
	return &Options{
		SeedBits:        16,
		Iterations:      1000,
		CollisionKeys:   500,
		DiffusionTrials: 100,
		ConfusionTrials: 100,
		CompressBlocks:  1024,
		Workers:         runtime.NumCPU(),
		Rand:            rand.Reader,
	}
}

// BlockBits is the message and key length used by the run.
func (o *Options) BlockBits() int { return 4 * o.SeedBits }

// Validate rejects option sets that could not produce a single block.
func (o *Options) Validate() error {
	if o.SeedBits < feistel.MinSeedBits {
		return fmt.Errorf("analysis: seed of %d bits is below the minimum of %d", o.SeedBits, feistel.MinSeedBits)
	}
	for _, n := range []int{o.BlockBits() / 2, o.BlockBits()} {
		if _, err := permutation.Generate(n); err != nil {
			return fmt.Errorf("analysis: %d-bit seeds are unusable: %w", o.SeedBits, err)
		}
	}
	counts := map[string]int{
		"iterations":       o.Iterations,
		"collision keys":   o.CollisionKeys,
		"diffusion trials": o.DiffusionTrials,
		"confusion trials": o.ConfusionTrials,
		"compress blocks":  o.CompressBlocks,
	}
	for name, v := range counts {
		if v <= 0 {
			return fmt.Errorf("analysis: %s must be positive, got %d", name, v)
		}
	}
	return nil
}

func (o *Options) rand() io.Reader {
	if o.Rand == nil {
		return rand.Reader
	}
	return o.Rand
}

func (o *Options) workers() int {
	if o.Workers < 1 {
		return 1
	}
	return o.Workers
}
