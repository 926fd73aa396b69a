package main

import (
	"os"

	"github.com/nikfortgames/beamroom/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
