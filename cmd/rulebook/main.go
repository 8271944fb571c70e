package main

import (
	"os"

	"github.com/rustyeddy/rulebook/cmd/rulebook/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
