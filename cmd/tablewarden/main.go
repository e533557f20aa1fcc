// Package main provides the entry point for the tablewarden CLI.
package main

import "github.com/tablewarden/tablewarden/cmd/tablewarden/cmd"

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
