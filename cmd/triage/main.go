package main

import (
	"os"

	"github.com/opsdesk/triage/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
