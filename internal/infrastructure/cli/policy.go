package cli

import (
	"fmt"

	"github.com/felixgeelhaar/intakerouter/pkg/application"
	"github.com/felixgeelhaar/intakerouter/pkg/storage"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	policyJSON  bool
	policyActor string
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect, validate and update the routing policy",
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active policy with defaults filled in",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := workspaceServices(cmd)
		if err != nil {
			return err
		}
		cfg := services.Policy.Policy()
		if policyJSON {
			return printJSON(cmd.OutOrStdout(), cfg)
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal policy: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var policyValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a policy file (defaults to the workspace policy.yaml)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 0 {
			path = args[0]
		} else {
			root, err := getProjectRoot()
			if err != nil {
				return fmt.Errorf("resolve project path: %w", err)
			}
			path = storage.NewFilesystemRepository(root).PolicyPath()
		}

		cfg, err := storage.ReadPolicyFile(path)
		if err != nil {
			return NewCLIError("policy file could not be read", "Check the YAML syntax and field names against 'intakerouter policy show'", err)
		}
		if err := cfg.Routing.Validate(); err != nil {
			return MapError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Policy %s is valid.\n", path)
		return nil
	},
}

var policyApplyCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Validate a policy file and make it the workspace policy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := storage.ReadPolicyFile(args[0])
		if err != nil {
			return NewCLIError("policy file could not be read", "Check the YAML syntax and field names against 'intakerouter policy show'", err)
		}
		services, err := workspaceServices(cmd)
		if err != nil {
			return err
		}
		if !services.Workspace.Repo.IsInitialized() {
			return MapError(application.ErrNotInitialized)
		}
		if err := services.Policy.Update(cfg, policyActor); err != nil {
			return MapError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Applied policy from %s.\n", args[0])
		return nil
	},
}

func init() {
	policyShowCmd.Flags().BoolVar(&policyJSON, "json", false, "Print the policy as JSON")
	policyApplyCmd.Flags().StringVar(&policyActor, "actor", "cli", "Actor recorded in the audit trail")
	policyCmd.AddCommand(policyShowCmd, policyValidateCmd, policyApplyCmd)
	RootCmd.AddCommand(policyCmd)
}
