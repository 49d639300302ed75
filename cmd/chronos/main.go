package main

import (
	"os"

	"github.com/wonny/chronos/cmd/chronos/commands"
)

// main is the entry point for the Chronos CLI
// ⭐ Unified CLI entry point: go run ./cmd/chronos [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
