package main

import (
	"os"

	"github.com/campuswash/laundry/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
