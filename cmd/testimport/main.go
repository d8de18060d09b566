// Package main is the entry point for the testimport CLI.
package main

import (
	"os"

	"github.com/AndreyAkinshin/testimport/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
