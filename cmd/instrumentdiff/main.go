// Command instrumentdiff builds a flat table from per-instrument
// configuration files and compares instruments field by field.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JonMunkholm/instrumentdiff/internal/core"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	if err := newRootCmd().Execute(); err != nil {
		if msg := core.FormatUserError(err); msg != "" && core.MapError(err).Code != "ERR000" {
			fmt.Fprintln(os.Stderr, msg)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
