package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var projectPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "intakerouter",
	Version: Version,
	Short:   "Route intake requests to a delivery path",
	Long: `intakerouter scores a structured intake spec across seven factors and
recommends how it should be delivered:
  BUY            commercial off-the-shelf
  CONFIG         configure an existing platform
  AI_DISPOSABLE  short-lived AI-assisted build
  PRODUCT_GRADE  full engineering team
  CRITICAL       enterprise-grade with full governance`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and prints errors with their hint.
func Execute() error {
	err := RootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

// ExitCode returns the process exit code for an error returned by Execute.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.ExitCode != 0 {
		return cliErr.ExitCode
	}
	return 1
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.Hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", cliErr.Hint)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&projectPath, "project", "", "Workspace root (defaults to the current directory)")
}
