package main

import (
	"os"

	"github.com/veilcut/veilcut/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
