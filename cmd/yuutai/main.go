package main

import (
	"os"

	"github.com/wonny/yuutai/cmd/yuutai/commands"
)

// main is the entry point for the yuutai CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/yuutai [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
