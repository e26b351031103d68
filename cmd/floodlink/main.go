// Package main provides the floodlink CLI.
package main

import (
	"os"

	"github.com/floodlink-io/floodlink/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
