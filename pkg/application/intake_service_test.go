package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/intakerouter/pkg/application"
	"github.com/felixgeelhaar/intakerouter/pkg/domain"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/approval"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
	"github.com/felixgeelhaar/intakerouter/pkg/storage"
)

func TestCreateIntake_RequiresWorkspace(t *testing.T) {
	repo := storage.NewFilesystemRepository(t.TempDir())
	audit := application.NewAuditService(repo)
	policy, err := application.NewPolicyService(repo, audit)
	if err != nil {
		t.Fatal(err)
	}
	svc := application.NewIntakeService(repo, audit, policy)

	_, err = svc.CreateIntake(application.CreateIntakeInput{Title: "x"})
	if !errors.Is(err, application.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestCreateIntake(t *testing.T) {
	e := newEnv(t)

	in, err := e.intakes.CreateIntake(application.CreateIntakeInput{ID: "loan-tracker", Title: "  Loan tracker  "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if in.ID != "loan-tracker" || in.Title != "Loan tracker" || in.Status != intake.StatusDraft {
		t.Errorf("unexpected intake %+v", in)
	}

	if _, err := e.intakes.CreateIntake(application.CreateIntakeInput{ID: "loan-tracker", Title: "dup"}); err == nil {
		t.Error("expected duplicate id error")
	}
	if _, err := e.intakes.CreateIntake(application.CreateIntakeInput{Title: " "}); err == nil {
		t.Error("expected missing title error")
	}
	if _, err := e.intakes.CreateIntake(application.CreateIntakeInput{ID: "../etc", Title: "bad"}); err == nil {
		t.Error("expected invalid id error")
	}

	generated, err := e.intakes.CreateIntake(application.CreateIntakeInput{Title: "Second"})
	if err != nil {
		t.Fatal(err)
	}
	if generated.ID == "" || generated.ID == in.ID {
		t.Errorf("expected a generated id, got %q", generated.ID)
	}

	all, err := e.intakes.ListIntakes("")
	if err != nil || len(all) != 2 {
		t.Fatalf("list = %d, %v", len(all), err)
	}
}

func TestGetIntake_NotFound(t *testing.T) {
	e := newEnv(t)
	if _, err := e.intakes.GetIntake("missing"); !errors.Is(err, application.ErrIntakeNotFound) {
		t.Fatalf("expected ErrIntakeNotFound, got %v", err)
	}
}

func TestTransition_InvalidEvent(t *testing.T) {
	e := newEnv(t)
	in, _ := e.intakes.CreateIntake(application.CreateIntakeInput{Title: "x"})

	_, err := e.intakes.Transition(in.ID, intake.EventExport, "u")
	if !errors.Is(err, intake.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestTransition_SubmitAutoApproves(t *testing.T) {
	e := newEnv(t)
	in := e.routedIntake(t, specWith(intake.ClassificationInternal))

	in, err := e.intakes.Transition(in.ID, intake.EventSubmit, "req-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if in.Status != intake.StatusApproved {
		t.Fatalf("low-score BUY should auto-approve, got %s", in.Status)
	}

	events, _ := e.audit.EntityTimeline(domain.IntakeRef(in.ID))
	last := events[len(events)-1]
	if last.Actor != application.AutoApproveActor || last.Metadata["to"] != "approved" {
		t.Errorf("last event = %+v", last)
	}
}

func TestApprovalFlow_Critical(t *testing.T) {
	e := newEnv(t)
	in := e.routedIntake(t, specWith(intake.ClassificationRestricted))

	in, err := e.intakes.Transition(in.ID, intake.EventSubmit, "req-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if in.Status != intake.StatusPendingApproval {
		t.Fatalf("status = %s", in.Status)
	}

	if _, err := e.intakes.Transition(in.ID, intake.EventApprove, "arch"); !errors.Is(err, application.ErrApprovalRequired) {
		t.Fatalf("expected ErrApprovalRequired, got %v", err)
	}

	roles := []approval.Role{approval.RoleArchitect, approval.RoleEngineerLead, approval.RoleSecurity}
	for i, role := range roles {
		a, err := e.intakes.RecordDecision(in.ID, application.DecisionInput{
			ApproverID: string(role), Role: role, Decision: approval.DecisionApproved,
		})
		if err != nil {
			t.Fatalf("record %s: %v", role, err)
		}
		if a.Guardrails.DataZone != approval.ZoneRed {
			t.Errorf("restricted data should get the red zone, got %s", a.Guardrails.DataZone)
		}

		got, _ := e.intakes.GetIntake(in.ID)
		want := intake.StatusPendingApproval
		if i == len(roles)-1 {
			want = intake.StatusApproved
		}
		if got.Status != want {
			t.Errorf("after %s: status = %s, want %s", role, got.Status, want)
		}
	}

	approvals, _ := e.repo.LoadApprovals(in.ID)
	if len(approvals) != 3 {
		t.Errorf("expected 3 approvals, got %d", len(approvals))
	}
}

func TestRecordDecision_RejectAndRevise(t *testing.T) {
	e := newEnv(t)
	in := e.routedIntake(t, specWith(intake.ClassificationConfidential))
	if _, err := e.intakes.Transition(in.ID, intake.EventSubmit, "req-1"); err != nil {
		t.Fatal(err)
	}

	if _, err := e.intakes.RecordDecision(in.ID, application.DecisionInput{
		ApproverID: "arch", Role: approval.RoleArchitect, Decision: approval.DecisionRejected, Comments: "buy instead",
	}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	got, _ := e.intakes.GetIntake(in.ID)
	if got.Status != intake.StatusRejected {
		t.Fatalf("status = %s, want rejected", got.Status)
	}

	if _, err := e.intakes.RecordDecision(in.ID, application.DecisionInput{
		ApproverID: "arch", Role: approval.RoleArchitect, Decision: approval.DecisionApproved,
	}); !errors.Is(err, intake.ErrInvalidTransition) {
		t.Errorf("decisions on a rejected intake should fail, got %v", err)
	}

	got, err := e.intakes.Transition(in.ID, intake.EventRevise, "req-1")
	if err != nil || got.Status != intake.StatusGatheringInfo {
		t.Fatalf("revise: %v %v", got, err)
	}
}

func TestRecordDecision_Validation(t *testing.T) {
	e := newEnv(t)
	in := e.routedIntake(t, specWith(intake.ClassificationConfidential))

	if _, err := e.intakes.RecordDecision(in.ID, application.DecisionInput{Role: approval.RoleArchitect, Decision: "maybe"}); err == nil {
		t.Error("expected unknown decision error")
	}
	if _, err := e.intakes.RecordDecision(in.ID, application.DecisionInput{Decision: approval.DecisionApproved}); err == nil {
		t.Error("expected missing role error")
	}
	if _, err := e.intakes.RecordDecision(in.ID, application.DecisionInput{Role: approval.RoleArchitect, Decision: approval.DecisionApproved}); !errors.Is(err, intake.ErrInvalidTransition) {
		t.Errorf("intake not pending should fail, got %v", err)
	}
}

func TestEvaluate(t *testing.T) {
	e := newEnv(t)
	in, _ := e.intakes.CreateIntake(application.CreateIntakeInput{Title: "x"})
	if _, err := e.intakes.Evaluate(in.ID); !errors.Is(err, application.ErrNoRouting) {
		t.Fatalf("expected ErrNoRouting, got %v", err)
	}

	in = e.routedIntake(t, specWith(intake.ClassificationConfidential))
	ev, err := e.intakes.Evaluate(in.ID)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Approved() || len(ev.Missing) != 2 {
		t.Errorf("confidential BUY needs architect and security, got %+v", ev)
	}
}

func TestQueue(t *testing.T) {
	e := newEnv(t)
	pending := e.routedIntake(t, specWith(intake.ClassificationRestricted))
	if _, err := e.intakes.Transition(pending.ID, intake.EventSubmit, "req-1"); err != nil {
		t.Fatal(err)
	}
	e.routedIntake(t, specWith(intake.ClassificationInternal))

	items, err := e.intakes.Queue()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Intake.ID != pending.ID {
		t.Fatalf("queue = %+v", items)
	}
	if items[0].Routing == nil || items[0].Evaluation == nil {
		t.Errorf("queue item missing routing or evaluation: %+v", items[0])
	}
}

func TestKillDateRecorded(t *testing.T) {
	e := newEnv(t)
	in := e.routedIntake(t, specWith(intake.ClassificationRestricted))
	if _, err := e.intakes.Transition(in.ID, intake.EventSubmit, "req-1"); err != nil {
		t.Fatal(err)
	}
	kill := time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC)
	a, err := e.intakes.RecordDecision(in.ID, application.DecisionInput{
		ApproverID: "arch", Role: approval.RoleArchitect, Decision: approval.DecisionApproved, KillDate: &kill,
	})
	if err != nil {
		t.Fatal(err)
	}
	if a.KillDate == nil || !a.KillDate.Equal(kill) {
		t.Errorf("kill date = %v", a.KillDate)
	}
}

func TestApproval_ChangedSpecNeedsFreshRouting(t *testing.T) {
	e := newEnv(t)
	in := e.routedIntake(t, specWith(intake.ClassificationConfidential))
	if _, err := e.intakes.Transition(in.ID, intake.EventSubmit, "req-1"); err != nil {
		t.Fatal(err)
	}

	changed := specWith(intake.ClassificationConfidential)
	changed.NFRs.Availability = "24/7 uptime required"
	if err := e.routing.SaveSpec(in.ID, changed, "req-1"); !errors.Is(err, application.ErrIntakeLocked) {
		t.Fatalf("pending intake accepted a new spec: %v", err)
	}

	// A spec edited on disk leaves the stored BUY routing stale.
	if err := e.repo.SaveSpec(in.ID, changed); err != nil {
		t.Fatal(err)
	}
	ev, err := e.intakes.Evaluate(in.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !ev.Stale || ev.Approved() {
		t.Fatalf("stale routing must not be approvable: %+v", ev)
	}
	for _, role := range []approval.Role{approval.RoleArchitect, approval.RoleSecurity} {
		_, err := e.intakes.RecordDecision(in.ID, application.DecisionInput{
			ApproverID: string(role), Role: role, Decision: approval.DecisionApproved,
		})
		if !errors.Is(err, application.ErrApprovalRequired) || !errors.Is(err, application.ErrStaleRouting) {
			t.Fatalf("decision on stale routing: %v", err)
		}
	}
	if _, err := e.intakes.Transition(in.ID, intake.EventApprove, "arch"); !errors.Is(err, application.ErrApprovalRequired) {
		t.Fatalf("approve on stale routing: %v", err)
	}
	if got, _ := e.intakes.GetIntake(in.ID); got.Status != intake.StatusPendingApproval {
		t.Fatalf("status = %s", got.Status)
	}

	if _, err := e.intakes.Transition(in.ID, intake.EventRevise, "req-1"); err != nil {
		t.Fatal(err)
	}
	if err := e.routing.SaveSpec(in.ID, changed, "req-1"); err != nil {
		t.Fatalf("revised intake should accept the spec: %v", err)
	}
	rec, err := e.routing.RouteIntake(context.Background(), in.ID, "req-1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Result.Path != routing.PathCritical {
		t.Fatalf("path = %s, want CRITICAL", rec.Result.Path)
	}
	for _, ev := range []string{intake.EventGenerateSpec, intake.EventSubmit} {
		if _, err := e.intakes.Transition(in.ID, ev, "req-1"); err != nil {
			t.Fatalf("%s: %v", ev, err)
		}
	}

	roles := []approval.Role{approval.RoleArchitect, approval.RoleSecurity, approval.RoleEngineerLead}
	for i, role := range roles {
		if _, err := e.intakes.RecordDecision(in.ID, application.DecisionInput{
			ApproverID: string(role), Role: role, Decision: approval.DecisionApproved,
		}); err != nil {
			t.Fatalf("record %s: %v", role, err)
		}
		got, _ := e.intakes.GetIntake(in.ID)
		want := intake.StatusPendingApproval
		if i == len(roles)-1 {
			want = intake.StatusApproved
		}
		if got.Status != want {
			t.Errorf("after %s: status = %s, want %s", role, got.Status, want)
		}
	}
}

func TestApproval_ReRouteDropsEarlierDecisions(t *testing.T) {
	e := newEnv(t)
	in := e.routedIntake(t, specWith(intake.ClassificationConfidential))
	if _, err := e.intakes.Transition(in.ID, intake.EventSubmit, "req-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.intakes.RecordDecision(in.ID, application.DecisionInput{
		ApproverID: "arch", Role: approval.RoleArchitect, Decision: approval.DecisionApproved,
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := e.routing.RouteIntake(context.Background(), in.ID, "req-1"); err != nil {
		t.Fatalf("pending intake should allow re-routing: %v", err)
	}
	if _, err := e.intakes.RecordDecision(in.ID, application.DecisionInput{
		ApproverID: "sec", Role: approval.RoleSecurity, Decision: approval.DecisionApproved,
	}); err != nil {
		t.Fatal(err)
	}

	ev, err := e.intakes.Evaluate(in.ID)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Approved() || len(ev.Missing) != 1 || ev.Missing[0] != approval.RoleArchitect {
		t.Errorf("architect sign-off on the old routing should not count: %+v", ev)
	}
}

func TestRevise_ClearsDecisions(t *testing.T) {
	e := newEnv(t)
	in := e.routedIntake(t, specWith(intake.ClassificationConfidential))
	if _, err := e.intakes.Transition(in.ID, intake.EventSubmit, "req-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.intakes.RecordDecision(in.ID, application.DecisionInput{
		ApproverID: "arch", Role: approval.RoleArchitect, Decision: approval.DecisionRejected,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.intakes.Transition(in.ID, intake.EventRevise, "req-1"); err != nil {
		t.Fatal(err)
	}
	approvals, err := e.repo.LoadApprovals(in.ID)
	if err != nil || len(approvals) != 0 {
		t.Fatalf("approvals after revise = %v %v", approvals, err)
	}

	for _, ev := range []string{intake.EventGenerateSpec, intake.EventSubmit} {
		if _, err := e.intakes.Transition(in.ID, ev, "req-1"); err != nil {
			t.Fatalf("%s: %v", ev, err)
		}
	}
	ev, err := e.intakes.Evaluate(in.ID)
	if err != nil || ev.Rejected {
		t.Errorf("earlier rejection still counts: %+v %v", ev, err)
	}
}
