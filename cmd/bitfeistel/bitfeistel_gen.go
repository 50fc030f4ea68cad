package main

import (
	"crypto/rand"
	"fmt"

	"bitfeistel/pkg/bitseq"
	"bitfeistel/pkg/feistel"
	"bitfeistel/pkg/log"

	"github.com/urfave/cli/v2"
)

// seedFlags name a key by its seed; keyFlags add the expanded key itself.
var seedFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "seed",
		Aliases: []string{"s"},
		Usage:   "Seed as a bit string or 0x-prefixed hex `BITS`",
	},
	&cli.StringFlag{
		Name:    "passphrase",
		Aliases: []string{"p"},
		Usage:   "Derive the seed from `PASSPHRASE` with HKDF-SHA256",
	},
	&cli.IntFlag{
		Name:    "bits",
		Aliases: []string{"b"},
		Usage:   "Seed length in `BITS` for --passphrase and --random (default: seed_bits from config)",
	},
}

var keyFlags = append([]cli.Flag{
	&cli.StringFlag{
		Name:    "key",
		Aliases: []string{"k"},
		Usage:   "Expanded key as a bit string or 0x-prefixed hex `BITS`",
	},
}, seedFlags...)

var genCommand = &cli.Command{
	Name:      "gen",
	Usage:     "Expand a seed into a key",
	UsageText: "bitfeistel gen [--seed BITS | --passphrase TEXT | --random] [--bits N]",
	Flags: append([]cli.Flag{
		&cli.BoolFlag{
			Name:  "random",
			Usage: "Draw a random seed",
		},
	}, seedFlags...),
	Action: genCmd,
}

func seedBits(c *cli.Context) int {
	if c.IsSet("bits") {
		return c.Int("bits")
	}
	return cfg.SeedBits
}

// resolveKey builds the key named by exactly one of --key, --seed,
// --passphrase or (when allowed) --random.
func resolveKey(c *cli.Context) (feistel.Key, error) {
	set := 0
	for _, name := range []string{"key", "seed", "passphrase", "random"} {
		if c.IsSet(name) {
			set++
		}
	}
	if set != 1 {
		return feistel.Key{}, fmt.Errorf("exactly one of --key, --seed or --passphrase is required")
	}

	var seed bitseq.Sequence
	var err error
	switch {
	case c.IsSet("key"):
		bits, err := bitseq.Decode(c.String("key"))
		if err != nil {
			return feistel.Key{}, fmt.Errorf("invalid key: %w", err)
		}
		return feistel.KeyFromBits(bits)
	case c.IsSet("passphrase"):
		seed, err = feistel.SeedFromPassphrase(c.String("passphrase"), seedBits(c))
	case c.IsSet("random"):
		seed, err = bitseq.Random(rand.Reader, seedBits(c))
	default:
		seed, err = bitseq.Decode(c.String("seed"))
	}
	if err != nil {
		return feistel.Key{}, fmt.Errorf("invalid seed: %w", err)
	}
	return feistel.GenerateKey(seed)
}

func genCmd(c *cli.Context) error {
	key, err := resolveKey(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	log.Debug().Str("fingerprint", key.Fingerprint()).Int("bits", key.Len()).Msg("key generated")

	fmt.Printf("KEY: %s\n", key)
	if b, err := key.Bits().Bytes(); err == nil {
		fmt.Printf("HEX: 0x%x\n", b)
	}
	fmt.Printf("BITS: %d\n", key.Len())
	fmt.Printf("ROUNDS: %d\n", key.Rounds())
	fmt.Printf("FINGERPRINT: %s\n", key.Fingerprint())
	return nil
}
