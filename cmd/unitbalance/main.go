// Command unitbalance runs the live balance override server and its document tools.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/udisondev/unitbalance/cmd/unitbalance/commands"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli := commands.New(os.Stdout)
	cli.SetArgs(args)
	if err := cli.Execute(ctx); err != nil {
		slog.Error("fatal", "err", err)
		return 1
	}
	return 0
}
