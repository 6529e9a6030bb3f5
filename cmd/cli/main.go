package main

import (
	"os"

	"github.com/podiumhq/podium/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
