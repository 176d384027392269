package main

import (
	"os"

	"github.com/valksor/go-cm/cmd/cm/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
