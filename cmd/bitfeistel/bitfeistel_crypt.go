package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"bitfeistel/pkg/bitseq"
	"bitfeistel/pkg/feistel"
	"bitfeistel/pkg/transform"

	"github.com/urfave/cli/v2"
)

var cryptFlags = append([]cli.Flag{
	&cli.BoolFlag{
		Name:  "hex",
		Usage: "Treat input and output as hex bytes; the key length must be a multiple of 8",
	},
}, keyFlags...)

var encCommand = &cli.Command{
	Name:      "enc",
	Usage:     "Encrypt one block",
	UsageText: "bitfeistel enc [--key BITS | --seed BITS | --passphrase TEXT] [--hex] BLOCK",
	Flags:     cryptFlags,
	Action:    func(c *cli.Context) error { return cryptCmd(c, true) },
}

var decCommand = &cli.Command{
	Name:      "dec",
	Usage:     "Decrypt one block",
	UsageText: "bitfeistel dec [--key BITS | --seed BITS | --passphrase TEXT] [--hex] BLOCK",
	Flags:     cryptFlags,
	Action:    func(c *cli.Context) error { return cryptCmd(c, false) },
}

func cryptCmd(c *cli.Context, encrypt bool) error {
	if c.NArg() != 1 {
		return cli.Exit("Error: exactly one BLOCK argument is required.", 1)
	}
	key, err := resolveKey(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	input := c.Args().First()

	if c.Bool("hex") {
		out, err := cryptHex(key, input, encrypt)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
		fmt.Println(out)
		return nil
	}

	block, err := bitseq.Decode(input)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: invalid block: %v", err), 1)
	}
	var out bitseq.Sequence
	if encrypt {
		out, err = feistel.Encrypt(key, block)
	} else {
		out, err = feistel.Decrypt(key, block)
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	fmt.Println(out)
	return nil
}

// cryptHex runs the [block, hex] pipeline: encryption takes raw hex bytes and
// returns hex ciphertext, decryption the reverse.
func cryptHex(key feistel.Key, input string, encrypt bool) (string, error) {
	bt, err := transform.NewBlockTransform(key)
	if err != nil {
		return "", err
	}
	pp, err := transform.NewPayloadProcessor(bt, transform.NewHexTransform())
	if err != nil {
		return "", err
	}
	input = strings.TrimPrefix(strings.TrimSpace(input), "0x")

	if encrypt {
		plain, err := hex.DecodeString(input)
		if err != nil {
			return "", fmt.Errorf("invalid hex block: %w", err)
		}
		out, err := pp.PrepareOutput(plain)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	plain, err := pp.ParseInput([]byte(input))
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(plain), nil
}
