package main

import (
	"os"

	"github.com/imkarma/trophy/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
