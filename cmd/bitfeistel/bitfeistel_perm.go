package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"bitfeistel/pkg/permutation"
	"bitfeistel/pkg/viz"

	"github.com/urfave/cli/v2"
)

var permCommand = &cli.Command{
	Name:      "perm",
	Usage:     "Show the affine bit permutation of a given size",
	UsageText: "bitfeistel perm [--format json|dot|svg] [--out FILE] SIZE",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output `FORMAT`: json, dot or svg",
			Value:   "json",
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Write to `FILE` instead of stdout",
		},
	},
	Action: permCmd,
}

func permCmd(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("Error: exactly one SIZE argument is required.", 1)
	}
	n, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: invalid size %q", c.Args().First()), 1)
	}
	p, err := permutation.Generate(n)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	var out []byte
	switch c.String("format") {
	case "json":
		out, err = json.MarshalIndent(map[string][]int{
			"forward": p.Forward(),
			"inverse": p.Inverse(),
		}, "", "  ")
		out = append(out, '\n')
	case "dot":
		out = []byte(viz.DOT(p))
	case "svg":
		out, err = viz.SVG(c.Context, p)
	default:
		return cli.Exit(fmt.Sprintf("Error: unknown format %q", c.String("format")), 1)
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	if path := c.String("out"); path != "" {
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return cli.Exit(fmt.Sprintf("Error writing %s: %v", path, err), 1)
		}
		return nil
	}
	_, err = os.Stdout.Write(out)
	return err
}
