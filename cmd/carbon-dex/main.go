package main

import (
	"os"

	"github.com/lugondev/go-carbon-dex/cmd/carbon-dex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
