package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

var logsCommand = &cli.Command{
	Name:      "logs",
	Usage:     "Print log entries stored in the database",
	UsageText: "bitfeistel logs [--count N] [--pretty]",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"n"},
			Usage:   "Number of most recent entries `NUMBER`",
			Value:   100,
		},
		&cli.BoolFlag{
			Name:    "pretty",
			Aliases: []string{"p"},
			Usage:   "Human-readable output instead of raw JSON",
		},
	},
	Action: logsCmd,
}

func logsCmd(c *cli.Context) error {
	count := c.Int("count")
	if count <= 0 {
		return cli.Exit("Error: --count (-n) must be a positive number.", 1)
	}
	st, err := openStore()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error opening database: %v", err), 1)
	}
	defer st.Close()

	entries, err := st.LastLogs(count)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error retrieving logs: %v", err), 1)
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No log entries found.")
		return nil
	}

	if !c.Bool("pretty") {
		for _, e := range entries {
			fmt.Println(e.LogData)
		}
		return nil
	}
	pretty := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05"}
	for _, e := range entries {
		if _, err := pretty.Write([]byte(e.LogData)); err != nil {
			fmt.Println(e.LogData)
		}
	}
	return nil
}
