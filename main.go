package main

import (
	"os"

	"github.com/RiseVision/rise-node/app"
)

func main() {
	if err := app.StartApp(); err != nil {
		os.Exit(1)
	}
}
