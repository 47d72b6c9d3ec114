package cli

import (
	"fmt"

	"github.com/felixgeelhaar/intakerouter/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/intakerouter/pkg/domain"
	"github.com/spf13/cobra"
)

var (
	timelineIntake string
	timelineJSON   bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect and verify the workspace audit trail",
}

var auditTimelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show audit events, optionally for one intake",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return fmt.Errorf("resolve project path: %w", err)
		}
		service := wiring.NewWorkspace(root).Audit

		var events []domain.Event
		if timelineIntake != "" {
			events, err = service.EntityTimeline(domain.IntakeRef(timelineIntake))
		} else {
			events, err = service.GetTimeline()
		}
		if err != nil {
			return fmt.Errorf("failed to load timeline: %w", err)
		}

		out := cmd.OutOrStdout()
		if timelineJSON {
			if events == nil {
				events = []domain.Event{}
			}
			return printJSON(out, events)
		}
		if len(events) == 0 {
			fmt.Fprintln(out, "No audit events recorded.")
			return nil
		}
		for _, ev := range events {
			fmt.Fprintf(out, "%s  %-26s %-14s %s/%s\n",
				ev.Timestamp.Format("2006-01-02 15:04:05"), ev.Action, ev.Actor, ev.EntityType, ev.EntityID)
		}
		return nil
	},
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the integrity of the audit hash chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return fmt.Errorf("resolve project path: %w", err)
		}
		service := wiring.NewWorkspace(root).Audit

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Verifying audit trail integrity...")
		violations, err := service.VerifyIntegrity()
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		if len(violations) == 0 {
			fmt.Fprintln(out, "Audit trail is intact and verified.")
			return nil
		}

		fmt.Fprintf(out, "Found %d integrity violations:\n", len(violations))
		for _, v := range violations {
			fmt.Fprintf(out, "  - %s\n", v)
		}
		return &CLIError{Message: "audit trail has been tampered with", ExitCode: 3}
	},
}

func init() {
	auditTimelineCmd.Flags().StringVar(&timelineIntake, "intake", "", "Only show events for this intake")
	auditTimelineCmd.Flags().BoolVar(&timelineJSON, "json", false, "Print events as JSON")
	auditCmd.AddCommand(auditTimelineCmd, auditVerifyCmd)
	RootCmd.AddCommand(auditCmd)
}
