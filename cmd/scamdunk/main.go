package main

import (
	"os"

	"github.com/wonny/scamdunk/cmd/scamdunk/commands"
)

// main is the entry point for the ScamDunk CLI
// ⭐ single CLI entry point: go run ./cmd/scamdunk [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
