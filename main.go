package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"yatube/service"
)

var exit = os.Exit

func main() {
	exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := service.NewRootCommand(os.Stdout, os.Stdin)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
