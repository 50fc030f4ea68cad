package main

import (
	"encoding/json"
	"fmt"
	"os"

	"bitfeistel/pkg/analysis"

	"github.com/urfave/cli/v2"
)

var reportsCommand = &cli.Command{
	Name:      "reports",
	Usage:     "Print stored analysis reports",
	UsageText: "bitfeistel reports [--id ID | --count N] [--json]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "id",
			Usage: "Print only the report with this `ID`",
		},
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"n"},
			Usage:   "Number of most recent reports `NUMBER`",
			Value:   5,
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print reports as JSON",
		},
	},
	Action: reportsCmd,
}

func reportsCmd(c *cli.Context) error {
	st, err := openStore()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error opening database: %v", err), 1)
	}
	defer st.Close()

	var reports []*analysis.Report
	if id := c.String("id"); id != "" {
		r, err := st.Report(id)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
		reports = append(reports, r)
	} else {
		reports, err = st.LastReports(c.Int("count"))
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error retrieving reports: %v", err), 1)
		}
	}
	if len(reports) == 0 {
		fmt.Fprintln(os.Stderr, "No reports found.")
		return nil
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
	for i, r := range reports {
		if i > 0 {
			fmt.Println()
		}
		analysis.PrintResults(os.Stdout, r)
	}
	return nil
}
