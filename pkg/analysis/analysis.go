// Package analysis measures the cipher from the outside: round-trip
// correctness, timing, equivalent keys, diffusion, confusion and ciphertext
// compressibility. It only calls the public feistel API.
package analysis

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"

	"bitfeistel/pkg/bitseq"
	"bitfeistel/pkg/feistel"
	"bitfeistel/pkg/log"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/sourcegraph/conc/pool"
)

// TimingResults holds mean wall time per call.
type TimingResults struct {
	Iterations int           `json:"iterations"`
	Gen        time.Duration `json:"gen"`
	Enc        time.Duration `json:"enc"`
	Dec        time.Duration `json:"dec"`
}

// EncDec is the mean of the ENC and DEC averages.
func (t TimingResults) EncDec() time.Duration { return (t.Enc + t.Dec) / 2 }

// All is the mean of the GEN, ENC and DEC averages.
func (t TimingResults) All() time.Duration { return (t.Gen + t.Enc + t.Dec) / 3 }

// CompressionResults compares how well zstd shrinks counter plaintexts and
// their ciphertexts. A ratio near or above 1 means no visible structure.
type CompressionResults struct {
	Blocks      int     `json:"blocks"`
	PlainRatio  float64 `json:"plain_ratio"`
	CipherRatio float64 `json:"cipher_ratio"`
}

// Report gathers the results of Run.
type Report struct {
	ID             string             `json:"id"`
	StartedAt      time.Time          `json:"started_at"`
	Duration       time.Duration      `json:"duration"`
	SeedBits       int                `json:"seed_bits"`
	BlockBits      int                `json:"block_bits"`
	Correct        bool               `json:"correct"`
	Timing         TimingResults      `json:"timing"`
	KeysTried      int                `json:"keys_tried"`
	EquivalentKeys int                `json:"equivalent_keys"`
	Diffusion      float64            `json:"diffusion_percent"`
	Confusion      float64            `json:"confusion_percent"`
	Compression    CompressionResults `json:"compression"`
}

// Run executes every measurement in turn.
func Run(opts *Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r := &Report{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		SeedBits:  opts.SeedBits,
		BlockBits: opts.BlockBits(),
		KeysTried: opts.CollisionKeys,
	}
	log.Info().Str("run", r.ID).Int("seed_bits", r.SeedBits).Msg("analysis: starting")

	var err error
	if r.Correct, err = CheckCorrectness(opts); err != nil {
		return nil, fmt.Errorf("correctness: %w", err)
	}
	timing, err := MeasureTiming(opts)
	if err != nil {
		return nil, fmt.Errorf("timing: %w", err)
	}
	r.Timing = *timing
	if r.EquivalentKeys, err = CountEquivalentKeys(opts); err != nil {
		return nil, fmt.Errorf("equivalent keys: %w", err)
	}
	if r.Diffusion, err = MeasureDiffusion(opts); err != nil {
		return nil, fmt.Errorf("diffusion: %w", err)
	}
	if r.Confusion, err = MeasureConfusion(opts); err != nil {
		return nil, fmt.Errorf("confusion: %w", err)
	}
	compression, err := MeasureCompressibility(opts)
	if err != nil {
		return nil, fmt.Errorf("compressibility: %w", err)
	}
	r.Compression = *compression
	r.Duration = time.Since(r.StartedAt)

	log.Info().
		Str("run", r.ID).
		Bool("correct", r.Correct).
		Int("equivalent_keys", r.EquivalentKeys).
		Float64("diffusion", r.Diffusion).
		Float64("confusion", r.Confusion).
		Dur("took", r.Duration).
		Msg("analysis: finished")
	return r, nil
}

func randomKey(r io.Reader, seedBits int) (feistel.Key, error) {
	seed, err := bitseq.Random(r, seedBits)
	if err != nil {
		return feistel.Key{}, err
	}
	return feistel.GenerateKey(seed)
}

func randomIndex(r io.Reader, n int) (int, error) {
	v, err := rand.Int(r, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("analysis: failed to draw index: %w", err)
	}
	return int(v.Int64()), nil
}

// CheckCorrectness encrypts and decrypts one random block under one random
// key and reports whether the plaintext came back.
func CheckCorrectness(opts *Options) (bool, error) {
	key, err := randomKey(opts.rand(), opts.SeedBits)
	if err != nil {
		return false, err
	}
	m, err := bitseq.Random(opts.rand(), key.Len())
	if err != nil {
		return false, err
	}
	c, err := feistel.Encrypt(key, m)
	if err != nil {
		return false, err
	}
	back, err := feistel.Decrypt(key, c)
	if err != nil {
		return false, err
	}
	return bitseq.Equal(back, m), nil
}

// MeasureTiming averages GEN, ENC and DEC over opts.Iterations sequential
// calls. ENC and DEC use the one-shot forms so permutation setup is counted.
func MeasureTiming(opts *Options) (*TimingResults, error) {
	seed, err := bitseq.Random(opts.rand(), opts.SeedBits)
	if err != nil {
		return nil, err
	}
	m, err := bitseq.Random(opts.rand(), opts.BlockBits())
	if err != nil {
		return nil, err
	}
	n := opts.Iterations
	res := &TimingResults{Iterations: n}

	var key feistel.Key
	start := time.Now()
	for range n {
		if key, err = feistel.GenerateKey(seed); err != nil {
			return nil, err
		}
	}
	res.Gen = time.Since(start) / time.Duration(n)

	var c bitseq.Sequence
	start = time.Now()
	for range n {
		if c, err = feistel.Encrypt(key, m); err != nil {
			return nil, err
		}
	}
	res.Enc = time.Since(start) / time.Duration(n)

	start = time.Now()
	for range n {
		if _, err = feistel.Decrypt(key, c); err != nil {
			return nil, err
		}
	}
	res.Dec = time.Since(start) / time.Duration(n)
	return res, nil
}

// CountEquivalentKeys encrypts one fixed message under opts.CollisionKeys
// random keys. Every additional distinct key that yields an already seen
// ciphertext counts as one collision.
func CountEquivalentKeys(opts *Options) (int, error) {
	m, err := bitseq.Random(opts.rand(), opts.BlockBits())
	if err != nil {
		return 0, err
	}
	seeds := make([]bitseq.Sequence, opts.CollisionKeys)
	for i := range seeds {
		if seeds[i], err = bitseq.Random(opts.rand(), opts.SeedBits); err != nil {
			return 0, err
		}
	}

	type sample struct{ key, ciphertext string }
	p := pool.NewWithResults[sample]().WithErrors().WithMaxGoroutines(opts.workers())
	for _, seed := range seeds {
		p.Go(func() (sample, error) {
			key, err := feistel.GenerateKey(seed)
			if err != nil {
				return sample{}, err
			}
			c, err := feistel.Encrypt(key, m)
			if err != nil {
				return sample{}, err
			}
			return sample{key: key.String(), ciphertext: c.String()}, nil
		})
	}
	samples, err := p.Wait()
	if err != nil {
		return 0, err
	}

	keysByCiphertext := make(map[string]map[string]struct{})
	for _, s := range samples {
		keys, ok := keysByCiphertext[s.ciphertext]
		if !ok {
			keys = make(map[string]struct{})
			keysByCiphertext[s.ciphertext] = keys
		}
		keys[s.key] = struct{}{}
	}
	collisions := 0
	for ct, keys := range keysByCiphertext {
		if len(keys) > 1 {
			collisions += len(keys) - 1
			log.Warn().Str("ciphertext", ct).Int("keys", len(keys)).Msg("analysis: equivalent keys")
		}
	}
	return collisions, nil
}

// percentDiff is the share of differing bits, in percent.
func percentDiff(a, b bitseq.Sequence) (float64, error) {
	d, err := bitseq.Distance(a, b)
	if err != nil {
		return 0, err
	}
	return float64(d) / float64(len(a)) * 100, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// MeasureDiffusion flips one plaintext bit per trial under a single key and
// returns the mean percentage of ciphertext bits that changed.
func MeasureDiffusion(opts *Options) (float64, error) {
	key, err := randomKey(opts.rand(), opts.SeedBits)
	if err != nil {
		return 0, err
	}
	c, err := feistel.NewCipher(key)
	if err != nil {
		return 0, err
	}

	p := pool.NewWithResults[float64]().WithErrors().WithMaxGoroutines(opts.workers())
	for range opts.DiffusionTrials {
		m1, err := bitseq.Random(opts.rand(), key.Len())
		if err != nil {
			return 0, err
		}
		idx, err := randomIndex(opts.rand(), len(m1))
		if err != nil {
			return 0, err
		}
		m2 := m1.Flip(idx)
		p.Go(func() (float64, error) {
			c1, err := c.Encrypt(m1)
			if err != nil {
				return 0, err
			}
			c2, err := c.Encrypt(m2)
			if err != nil {
				return 0, err
			}
			return percentDiff(c1, c2)
		})
	}
	results, err := p.Wait()
	if err != nil {
		return 0, err
	}
	return mean(results), nil
}

// MeasureConfusion flips one seed bit per trial, regenerates the key and
// returns the mean percentage of ciphertext bits that changed for a fixed
// message.
func MeasureConfusion(opts *Options) (float64, error) {
	m, err := bitseq.Random(opts.rand(), opts.BlockBits())
	if err != nil {
		return 0, err
	}

	p := pool.NewWithResults[float64]().WithErrors().WithMaxGoroutines(opts.workers())
	for range opts.ConfusionTrials {
		s1, err := bitseq.Random(opts.rand(), opts.SeedBits)
		if err != nil {
			return 0, err
		}
		idx, err := randomIndex(opts.rand(), len(s1))
		if err != nil {
			return 0, err
		}
		s2 := s1.Flip(idx)
		p.Go(func() (float64, error) {
			var cts [2]bitseq.Sequence
			for i, seed := range []bitseq.Sequence{s1, s2} {
				key, err := feistel.GenerateKey(seed)
				if err != nil {
					return 0, err
				}
				if cts[i], err = feistel.Encrypt(key, m); err != nil {
					return 0, err
				}
			}
			return percentDiff(cts[0], cts[1])
		})
	}
	results, err := p.Wait()
	if err != nil {
		return 0, err
	}
	return mean(results), nil
}

// counterBlock encodes i big-endian in the low bits of an n-bit block.
func counterBlock(i uint64, n int) bitseq.Sequence {
	out := make(bitseq.Sequence, n)
	for b := 0; b < n && b < 64; b++ {
		out[n-1-b] = uint8(i>>b) & 1
	}
	return out
}

// MeasureCompressibility encrypts opts.CompressBlocks counter blocks and
// compares the zstd ratio of the plaintext stream with that of the
// ciphertext stream.
func MeasureCompressibility(opts *Options) (*CompressionResults, error) {
	key, err := randomKey(opts.rand(), opts.SeedBits)
	if err != nil {
		return nil, err
	}
	c, err := feistel.NewCipher(key)
	if err != nil {
		return nil, err
	}

	var plain, cipher bitseq.Sequence
	for i := range opts.CompressBlocks {
		m := counterBlock(uint64(i), key.Len())
		ct, err := c.Encrypt(m)
		if err != nil {
			return nil, err
		}
		plain = append(plain, m...)
		cipher = append(cipher, ct...)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, fmt.Errorf("analysis: zstd encoder: %w", err)
	}
	defer enc.Close()
	ratio := func(s bitseq.Sequence) float64 {
		raw := s.Pack()
		return float64(len(enc.EncodeAll(raw, nil))) / float64(len(raw))
	}
	return &CompressionResults{
		Blocks:      opts.CompressBlocks,
		PlainRatio:  ratio(plain),
		CipherRatio: ratio(cipher),
	}, nil
}
