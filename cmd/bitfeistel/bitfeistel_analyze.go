package main

import (
	"fmt"
	"os"

	"bitfeistel/pkg/analysis"
	"bitfeistel/pkg/log"
	"bitfeistel/pkg/store"

	"github.com/urfave/cli/v2"
)

var analyzeCommand = &cli.Command{
	Name:        "analyze",
	Usage:       "Run the correctness, timing, key-collision, diffusion, confusion and compressibility tests",
	UsageText:   "bitfeistel analyze [--seed-bits N] [--iterations N] [--workers N] [--no-save]",
	Description: `Runs every measurement once and prints the report. Reports are saved to the database unless --no-save is given.`,
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "seed-bits", Usage: "Seed length `N`; blocks are 4*N bits"},
		&cli.IntFlag{Name: "iterations", Aliases: []string{"n"}, Usage: "Timing iterations `N`"},
		&cli.IntFlag{Name: "collision-keys", Usage: "Keys tried for equivalent-key search `N`"},
		&cli.IntFlag{Name: "diffusion-trials", Usage: "Plaintext bit flips `N`"},
		&cli.IntFlag{Name: "confusion-trials", Usage: "Seed bit flips `N`"},
		&cli.IntFlag{Name: "compress-blocks", Usage: "Counter blocks compressed `N`"},
		&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Concurrent workers `N`"},
		&cli.BoolFlag{Name: "no-save", Usage: "Do not store the report"},
	},
	Action: analyzeCmd,
}

func analyzeCmd(c *cli.Context) error {
	for flag, dst := range map[string]*int{
		"seed-bits":        &cfg.SeedBits,
		"iterations":       &cfg.Iterations,
		"collision-keys":   &cfg.CollisionKeys,
		"diffusion-trials": &cfg.DiffusionTrials,
		"confusion-trials": &cfg.ConfusionTrials,
		"compress-blocks":  &cfg.CompressBlocks,
		"workers":          &cfg.Workers,
	} {
		if c.IsSet(flag) {
			*dst = c.Int(flag)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	// Open the store first so the run's own log lines land in it.
	var st *store.Store
	if !c.Bool("no-save") {
		var err error
		if st, err = openStore(); err != nil {
			return cli.Exit(fmt.Sprintf("Error opening database: %v", err), 1)
		}
		defer st.Close()
	}

	rep, err := analysis.Run(cfg.AnalysisOptions())
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	analysis.PrintResults(os.Stdout, rep)

	if st == nil {
		return nil
	}
	if err := st.SaveReport(rep); err != nil {
		return cli.Exit(fmt.Sprintf("Error saving report: %v", err), 1)
	}
	log.Info().Str("report", rep.ID).Bool("correct", rep.Correct).Msg("report saved")
	return nil
}
