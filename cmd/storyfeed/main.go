// Command storyfeed assembles topic news feeds from a story stream and
// side content, and serves them in a terminal UI, on the command line and
// over MCP.
package main

import (
	"os"

	"github.com/custodia-labs/storyfeed/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
