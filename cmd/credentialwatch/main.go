// Command credentialwatch watches provider credentials for upcoming
// expiry. It runs expiry sweeps, answers questions about providers and
// credentials through a tool-calling language model, and serves both over
// HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		var exitErr exitError
		if errors.As(err, &exitErr) {
			if !exitErr.silent && exitErr.message != "" {
				fmt.Fprintln(os.Stderr, exitErr.message)
			}
			stop()
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err.Error())
		stop()
		os.Exit(1)
	}
}
