// Package main is the entry point for the composectl CLI.
//
// All functionality lives in internal/cli. Build-time variables are
// injected via ldflags by the release build; during development they
// default to "dev", "none" and "unknown".
package main

import (
	"github.com/mmr-tortoise/composectl/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	cli.Execute(cli.NewRootCommand())
}
