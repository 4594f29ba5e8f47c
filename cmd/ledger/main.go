package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	ledgercmd "github.com/louisbranch/elysium-descent/internal/cmd/ledger"
	"github.com/louisbranch/elysium-descent/internal/platform/config"
)

func main() {
	cfg, err := ledgercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ledgercmd.Run(ctx, cfg, os.Stdout); err != nil {
		config.Exitf("ledger: %v", err)
	}
}
