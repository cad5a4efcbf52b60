// Package main is the inkhub-import CLI: it loads a JSON data export into
// the hosted database.
package main

import (
	"os"

	"inkhub/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
