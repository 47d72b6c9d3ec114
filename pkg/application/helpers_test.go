package application_test

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/intakerouter/pkg/application"
	"github.com/felixgeelhaar/intakerouter/pkg/domain"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"github.com/felixgeelhaar/intakerouter/pkg/storage"
)

type env struct {
	repo    *storage.FilesystemRepository
	audit   *application.AuditService
	policy  *application.PolicyService
	intakes *application.IntakeService
	routing *application.RoutingService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	repo := storage.NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	audit := application.NewAuditService(repo)
	policy, err := application.NewPolicyService(repo, audit)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	return &env{
		repo:    repo,
		audit:   audit,
		policy:  policy,
		intakes: application.NewIntakeService(repo, audit, policy),
		routing: application.NewRoutingService(repo, policy, audit),
	}
}

func specWith(c intake.DataClassification) *intake.StructuredSpec {
	return &intake.StructuredSpec{
		ProblemStatement:   "Track equipment loans",
		DataClassification: c,
		Users:              []intake.UserDefinition{{Persona: "staff", Count: "5"}},
	}
}

// routedIntake creates an intake, stores spec, routes it and moves it to
// spec_generated.
func (e *env) routedIntake(t *testing.T, spec *intake.StructuredSpec) *intake.Intake {
	t.Helper()
	in, err := e.intakes.CreateIntake(application.CreateIntakeInput{Title: "Loan tracker", RequesterID: "req-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := e.routing.SaveSpec(in.ID, spec, "req-1"); err != nil {
		t.Fatalf("save spec: %v", err)
	}
	if _, err := e.routing.RouteIntake(context.Background(), in.ID, "req-1"); err != nil {
		t.Fatalf("route: %v", err)
	}
	in, err = e.intakes.Transition(in.ID, intake.EventGenerateSpec, "req-1")
	if err != nil {
		t.Fatalf("generate_spec: %v", err)
	}
	return in
}

func actions(t *testing.T, events []domain.Event) []string {
	t.Helper()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Action
	}
	return out
}
