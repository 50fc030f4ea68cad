package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bitfeistel/pkg/api"
	"bitfeistel/pkg/log"

	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:      "serve",
	Usage:     "Serve the HTTP API",
	UsageText: "bitfeistel serve [--listen ADDR]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "listen",
			Aliases: []string{"l"},
			Usage:   "Listen `ADDR` (default: api_listen_address from config)",
		},
	},
	Action: serveCmd,
}

func serveCmd(c *cli.Context) error {
	addr := cfg.APIListenAddr
	if c.IsSet("listen") {
		addr = c.String("listen")
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	st, err := openStore()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error opening database: %v", err), 1)
	}
	defer st.Close()

	a := api.NewApi(st, cfg.AnalysisOptions())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal %s, shutting down gracefully...", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("api shutdown failed")
		}
	}()

	if err := a.Start(addr); err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	log.Printf("api has been shut down.")
	return nil
}
