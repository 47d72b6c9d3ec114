package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/felixgeelhaar/intakerouter/pkg/application"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/approval"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"github.com/spf13/cobra"
)

var (
	intakeActor       string
	intakeJSON        bool
	createID          string
	createTitle       string
	createRequester   string
	createValueStream string
	createCategory    string
	createPriority    string
	listStatus        string
	decisionRole      string
	decisionComment   string
	decisionKillDate  string
	decisionRevise    bool
)

var intakeCmd = &cobra.Command{
	Use:   "intake",
	Short: "Manage intakes and their review lifecycle",
}

var intakeCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a draft intake",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := workspaceServices(cmd)
		if err != nil {
			return err
		}
		in, err := services.Intakes.CreateIntake(application.CreateIntakeInput{
			ID:            createID,
			Title:         createTitle,
			RequesterID:   createRequester,
			RequesterName: createRequester,
			ValueStream:   createValueStream,
			Category:      createCategory,
			Priority:      createPriority,
		})
		if err != nil {
			return MapError(fmt.Errorf("failed to create intake: %w", err))
		}
		if intakeJSON {
			return printJSON(cmd.OutOrStdout(), in)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created intake %s (%s)\n", in.ID, in.Status)
		return nil
	},
}

var intakeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List intakes",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := workspaceServices(cmd)
		if err != nil {
			return err
		}
		var status intake.Status
		if listStatus != "" {
			if status, err = intake.ParseStatus(listStatus); err != nil {
				return NewCLIError(err.Error(), "Valid statuses: "+joinStatuses(), err)
			}
		}
		list, err := services.Intakes.ListIntakes(status)
		if err != nil {
			return MapError(err)
		}
		if intakeJSON {
			if list == nil {
				list = []*intake.Intake{}
			}
			return printJSON(cmd.OutOrStdout(), list)
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No intakes found.")
			return nil
		}
		rows := make([]table.Row, 0, len(list))
		for _, in := range list {
			rows = append(rows, table.Row{in.ID, string(in.Status), in.Title, in.UpdatedAt.Format("2006-01-02")})
		}
		fmt.Fprintln(cmd.OutOrStdout(), staticTable([]table.Column{
			{Title: "ID", Width: 14},
			{Title: "Status", Width: 18},
			{Title: "Title", Width: 40},
			{Title: "Updated", Width: 10},
		}, rows))
		return nil
	},
}

func joinStatuses() string {
	all := intake.AllStatuses()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

var intakeShowCmd = &cobra.Command{
	Use:   "show <intake>",
	Short: "Show an intake with its routing and approval state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := workspaceServices(cmd)
		if err != nil {
			return err
		}
		in, err := services.Intakes.GetIntake(args[0])
		if err != nil {
			return MapError(err)
		}
		status, routeErr := services.Routing.GetRouting(in.ID)
		ev, _ := services.Intakes.Evaluate(in.ID)

		out := cmd.OutOrStdout()
		if intakeJSON {
			view := map[string]any{"intake": in, "valid_events": in.Status.ValidEvents()}
			if routeErr == nil {
				view["routing"] = status
			}
			if ev != nil {
				view["evaluation"] = ev
			}
			return printJSON(out, view)
		}

		fmt.Fprintf(out, "%s  %s\n", in.ID, in.Title)
		fmt.Fprintf(out, "Status: %s\n", in.Status)
		if in.RequesterName != "" {
			fmt.Fprintf(out, "Requester: %s\n", in.RequesterName)
		}
		if events := in.Status.ValidEvents(); len(events) > 0 {
			fmt.Fprintf(out, "Valid events: %s\n", strings.Join(events, ", "))
		}
		if routeErr != nil {
			fmt.Fprintln(out, dimStyle.Render("Not routed yet."))
			return nil
		}
		fmt.Fprintln(out)
		renderResult(out, &status.Record.Result)
		if status.Stale {
			fmt.Fprintln(out, warnStyle.Render("The spec changed since this routing; route it again."))
		}
		if ev != nil {
			fmt.Fprintf(out, "\nApprovers required: %s\n", joinRoles(ev.RequiredApprovers))
			if len(ev.Missing) > 0 {
				fmt.Fprintf(out, "Still missing: %s\n", joinRoles(ev.Missing))
			}
			if ev.AutoApproved {
				fmt.Fprintln(out, "Eligible for auto-approval.")
			}
			for _, v := range ev.Violations {
				fmt.Fprintf(out, "[%s] %s\n", strings.ToUpper(string(v.Level)), v.Message)
			}
		}
		return nil
	},
}

func joinRoles(roles []approval.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

var intakeTransitionCmd = &cobra.Command{
	Use:   "transition <intake> <event>",
	Short: "Fire a lifecycle event (gather, generate_spec, submit, approve, reject, revise, export, close)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := workspaceServices(cmd)
		if err != nil {
			return err
		}
		in, err := services.Intakes.Transition(args[0], args[1], intakeActor)
		if err != nil {
			return MapError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Intake %s is now %s\n", in.ID, in.Status)
		return nil
	},
}

func recordDecision(cmd *cobra.Command, id string, decision approval.Decision) error {
	services, err := workspaceServices(cmd)
	if err != nil {
		return err
	}
	input := application.DecisionInput{
		ApproverID:   intakeActor,
		ApproverName: intakeActor,
		Role:         approval.Role(decisionRole),
		Decision:     decision,
		Comments:     decisionComment,
	}
	if decisionKillDate != "" {
		when, err := time.Parse("2006-01-02", decisionKillDate)
		if err != nil {
			return NewCLIError("invalid kill date", "Use the YYYY-MM-DD format", err)
		}
		input.KillDate = &when
	}
	a, err := services.Intakes.RecordDecision(id, input)
	if err != nil {
		return MapError(err)
	}
	in, err := services.Intakes.GetIntake(id)
	if err != nil {
		return MapError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s by %s (%s). Intake %s is %s; data zone %s.\n",
		a.Decision, a.ApproverID, a.Role, in.ID, in.Status, a.Guardrails.DataZone)
	return nil
}

var intakeApproveCmd = &cobra.Command{
	Use:   "approve <intake>",
	Short: "Record an approval; the intake is approved once every required role signed off",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return recordDecision(cmd, args[0], approval.DecisionApproved)
	},
}

var intakeRejectCmd = &cobra.Command{
	Use:   "reject <intake>",
	Short: "Reject an intake, or send it back with --revise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		decision := approval.DecisionRejected
		if decisionRevise {
			decision = approval.DecisionNeedsRevision
		}
		return recordDecision(cmd, args[0], decision)
	},
}

func init() {
	intakeCmd.PersistentFlags().StringVar(&intakeActor, "actor", "cli", "Actor recorded in the audit trail")
	intakeCmd.PersistentFlags().BoolVar(&intakeJSON, "json", false, "Print results as JSON")

	intakeCreateCmd.Flags().StringVar(&createID, "id", "", "Intake ID (generated when empty)")
	intakeCreateCmd.Flags().StringVar(&createTitle, "title", "", "Intake title")
	intakeCreateCmd.Flags().StringVar(&createRequester, "requester", "", "Requester name")
	intakeCreateCmd.Flags().StringVar(&createValueStream, "value-stream", "", "Owning value stream")
	intakeCreateCmd.Flags().StringVar(&createCategory, "category", "", "Request category")
	intakeCreateCmd.Flags().StringVar(&createPriority, "priority", "", "Requested priority")
	_ = intakeCreateCmd.MarkFlagRequired("title")

	intakeListCmd.Flags().StringVar(&listStatus, "status", "", "Only list intakes in this status")

	for _, c := range []*cobra.Command{intakeApproveCmd, intakeRejectCmd} {
		c.Flags().StringVar(&decisionRole, "role", string(approval.RoleArchitect), "Approver role (architect, engineer_lead, security)")
		c.Flags().StringVar(&decisionComment, "comment", "", "Comment stored with the decision")
	}
	intakeApproveCmd.Flags().StringVar(&decisionKillDate, "kill-date", "", "Retirement date for AI Disposable deliveries (YYYY-MM-DD)")
	intakeRejectCmd.Flags().BoolVar(&decisionRevise, "revise", false, "Ask for revision instead of rejecting")

	intakeCmd.AddCommand(intakeCreateCmd, intakeListCmd, intakeShowCmd, intakeTransitionCmd, intakeApproveCmd, intakeRejectCmd)
	RootCmd.AddCommand(intakeCmd)
}
