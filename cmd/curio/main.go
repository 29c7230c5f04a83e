package main

import (
	"os"

	"github.com/curio-cabinet/curio/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
