package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tgienger/todo/internal/cli"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.New(fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)).Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
