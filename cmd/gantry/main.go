// Package main provides the entry point for the gantry CLI.
package main

import (
	"context"
	"os"

	"github.com/gantryci/gantry/internal/cli"
	"github.com/gantryci/gantry/internal/signal"
)

// Build information set via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2026-01-01"
var (
	version = "dev"     //nolint:gochecknoglobals // set via ldflags
	commit  = "none"    //nolint:gochecknoglobals // set via ldflags
	date    = "unknown" //nolint:gochecknoglobals // set via ldflags
)

func main() {
	handler := signal.NewHandler(context.Background())
	defer handler.Stop()

	err := cli.Execute(handler.Context(), cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})

	cli.CloseLogFile()
	os.Exit(cli.ExitCodeForError(err))
}
