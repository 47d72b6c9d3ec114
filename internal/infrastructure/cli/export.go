package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/felixgeelhaar/intakerouter/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/intakerouter/pkg/application"
	"github.com/spf13/cobra"
)

var exportActor string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export approved intakes to delivery trackers",
}

var exportJiraCmd = &cobra.Command{
	Use:   "jira <intake>",
	Short: "Create a Jira epic with one story per acceptance criterion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := workspaceServices(cmd)
		if err != nil {
			return err
		}
		if !services.Config.Jira.Enabled() {
			return NewCLIError("Jira is not configured",
				"Set INTAKE_JIRA_BASE_URL, INTAKE_JIRA_EMAIL, INTAKE_JIRA_API_TOKEN and INTAKE_JIRA_PROJECT, or add a jira section to .intake/server.yaml", nil)
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		exporter := wiring.NewExporter(services.Config.Jira, logger)
		svc := application.NewExportService(services.Intakes, services.Routing, exporter, services.Audit)

		receipt, err := svc.Export(cmd.Context(), args[0], exportActor)
		if err != nil {
			return MapError(fmt.Errorf("export failed: %w", err))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created epic %s", receipt.EpicKey)
		if receipt.EpicURL != "" {
			fmt.Fprintf(out, " (%s)", receipt.EpicURL)
		}
		fmt.Fprintf(out, " with %d stories.\n", len(receipt.StoryKeys))
		for _, f := range receipt.Failures {
			fmt.Fprintln(out, warnStyle.Render("Not created: "+f))
		}
		return nil
	},
}

func init() {
	exportJiraCmd.Flags().StringVar(&exportActor, "actor", "cli", "Actor recorded in the audit trail")
	exportCmd.AddCommand(exportJiraCmd)
	RootCmd.AddCommand(exportCmd)
}
