package main

import (
	"os"

	"github.com/limaJavier/courseload/cmd/cli/commands"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	// Errors are printed by the printer package; the exit code tells the outcome of a solve
	os.Exit(commands.Execute())
}
