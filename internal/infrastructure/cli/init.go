package cli

import (
	"fmt"

	"github.com/felixgeelhaar/intakerouter/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/intakerouter/pkg/storage"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize an intake workspace with the default policy",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return fmt.Errorf("resolve project path: %w", err)
		}
		created, err := wiring.NewWorkspace(root).Init()
		if err != nil {
			return fmt.Errorf("failed to initialize workspace: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Initialized intake workspace in %s/%s\n", root, storage.IntakeDir)
		if created {
			fmt.Fprintf(out, "Wrote the default routing policy to %s/%s\n", storage.IntakeDir, storage.PolicyFile)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
}
