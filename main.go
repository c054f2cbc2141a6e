// Command press renders trees of text, substitutions, and iterations against
// YAML metadata.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ardnew/press/cli"
	"github.com/ardnew/press/lang"
	"github.com/ardnew/press/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Run(ctx, os.Exit, os.Args[1:]...); err != nil {
		log.ErrorContext(ctx, "press failed", slog.Any("error", lang.WrapError(err)))

		return 1
	}

	return 0
}
