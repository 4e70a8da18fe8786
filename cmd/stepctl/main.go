package main

import (
	"os"

	"codeforge/cmd/stepctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
