package main

import (
	"os"

	"github.com/schemaplan/schemaplan/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
