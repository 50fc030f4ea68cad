package main

import (
	"fmt"
	"os"

	"bitfeistel/pkg/config"
	"bitfeistel/pkg/log"
	"bitfeistel/pkg/store"

	"github.com/urfave/cli/v2"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// cfg is filled by loadConfig before any command runs.
var cfg *config.Config

var globalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to a YAML config `FILE` (default: ./bitfeistel.yaml, ~/.bitfeistel, /etc/bitfeistel)",
	},
	&cli.StringFlag{
		Name:  "log-level",
		Usage: "Log `LEVEL` (debug, info, warn, error)",
	},
	&cli.StringFlag{
		Name:  "db",
		Usage: "SQLite database `PATH` for reports and logs",
	},
}

func loadConfig(c *cli.Context) error {
	var err error
	cfg, err = config.LoadConfig(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error loading configuration: %v", err), 1)
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("db") {
		cfg.DBFile = c.String("db")
	}
	if err := log.SetStd(cfg.LogLevel); err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	return nil
}

// openStore opens the configured database and adds it as a log sink.
func openStore() (*store.Store, error) {
	path, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	if err := log.SetStd(cfg.LogLevel, st.LogWriter()); err != nil {
		st.Close()
		return nil, err
	}
	log.Debug().Str("db", path).Msg("store opened")
	return st, nil
}

func main() {
	app := &cli.App{
		Name:    "bitfeistel",
		Usage:   "bit-level Feistel block cipher and analysis harness",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags:   globalFlags,
		Before:  loadConfig,
		Commands: []*cli.Command{
			genCommand,
			encCommand,
			decCommand,
			analyzeCommand,
			permCommand,
			serveCommand,
			logsCommand,
			reportsCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
