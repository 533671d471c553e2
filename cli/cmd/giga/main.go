// giga CLI - GigaChat API command-line client.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/petal-labs/giga/cli/commands"
)

// ExitCoder is an interface for errors that have an exit code.
type ExitCoder interface {
	ExitCode() int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := commands.NewApp().ExecuteContext(ctx); err != nil {
		stop()
		if ec, ok := err.(ExitCoder); ok {
			os.Exit(ec.ExitCode())
		}
		os.Exit(1)
	}
}
