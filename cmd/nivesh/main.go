package main

import (
	"os"

	"github.com/niveshlab/nivesh/cmd/nivesh/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
