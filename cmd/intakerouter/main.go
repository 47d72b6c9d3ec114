package main

import (
	"os"

	"github.com/felixgeelhaar/intakerouter/internal/infrastructure/cli"
	inframcp "github.com/felixgeelhaar/intakerouter/internal/infrastructure/mcp"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.RootCmd.Version = version
	inframcp.Version = version
	inframcp.BuildCommit = commit
	inframcp.BuildDate = date

	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
