package analysis

import (
	"fmt"
	"io"
	"time"

	"bitfeistel/internal/fn"

	"github.com/dustin/go-humanize"
)

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.6f seconds", d.Seconds())
}

// PrintResults writes the textual report for r.
func PrintResults(w io.Writer, r *Report) {
	fmt.Fprintf(w, "RUN: %s (%d-bit seeds, %d-bit blocks, %s)\n",
		r.ID, r.SeedBits, r.BlockBits, humanize.Time(r.StartedAt))
	fmt.Fprintf(w, "CORRECTNESS: [%s]\n", fn.T(r.Correct, "SUCCESS", "FAILURE"))

	fmt.Fprintf(w, "RUNS PER TEST: %s\n", humanize.Comma(int64(r.Timing.Iterations)))
	fmt.Fprintf(w, "TIME GEN: %s\n", seconds(r.Timing.Gen))
	fmt.Fprintf(w, "TIME ENC: %s\n", seconds(r.Timing.Enc))
	fmt.Fprintf(w, "TIME DEC: %s\n", seconds(r.Timing.Dec))
	fmt.Fprintf(w, "MEAN TIME (ENC + DEC): %s\n", seconds(r.Timing.EncDec()))
	fmt.Fprintf(w, "MEAN TIME (GEN + ENC + DEC): %s\n", seconds(r.Timing.All()))

	fmt.Fprintf(w, "EQUIVALENT KEYS: %d of %s keys\n", r.EquivalentKeys, humanize.Comma(int64(r.KeysTried)))
	fmt.Fprintf(w, "DIFFUSION: %.2f%%\n", r.Diffusion)
	fmt.Fprintf(w, "CONFUSION: %.2f%%\n", r.Confusion)
	fmt.Fprintf(w, "COMPRESSIBILITY (%s blocks): plaintext %.3f, ciphertext %.3f\n",
		humanize.Comma(int64(r.Compression.Blocks)), r.Compression.PlainRatio, r.Compression.CipherRatio)
	fmt.Fprintf(w, "TOTAL: %s\n", r.Duration.Round(time.Millisecond))
}
