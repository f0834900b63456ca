package main

import (
	"os"

	"github.com/plugforge/plugforge/pkg/cli"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
