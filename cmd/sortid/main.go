package main

import (
	"os"

	"github.com/rustyeddy/sortid/cmd/sortid/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
