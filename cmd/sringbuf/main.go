// Package main is the entry point for the sringbuf CLI.
//
// Usage:
//
//	sringbuf [flags] <command> [args]
//
// Commands:
//
//	replay   - Run replay scripts against a ring buffer
//	schema   - Print the replay script JSON Schema
//	reports  - Browse saved replay reports
//	config   - View or change CLI settings
//	version  - Show version information
package main

import (
	"os"

	"github.com/reb0und/sringbuf/cmd/sringbuf/commands"
	"github.com/reb0und/sringbuf/pkg/cli"
)

func main() {
	if err := commands.Execute(); err != nil {
		cli.PrintError("%v", err)
		os.Exit(1)
	}
}
