// Package main is the entry point for the kgatrackerctl control CLI.
package main

import (
	"os"

	"github.com/kgatracker/kgatracker/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
