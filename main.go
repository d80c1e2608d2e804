package main

import (
	"os"

	"github.com/eco2-team/backend/domains/data-shield/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
