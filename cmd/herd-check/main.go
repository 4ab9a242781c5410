package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/sleigh/internal/herdcheck"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := herdcheck.Command().Run(ctx, os.Args); err != nil {
		os.Stderr.WriteString("herd check failed: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
