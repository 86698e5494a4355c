package main

import (
	"context"
	"os"

	"github.com/desertthunder/compilations/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "compilations",
		Usage:    "Browse and curate the videos saved on your Reddit account",
		Version:  "0.1.0",
		Flags:    rootFlags(),
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
