package main

import (
	"os"

	"github.com/puqiar/go-fig/cmd/fig/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
