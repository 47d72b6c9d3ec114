package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/intakerouter/pkg/application"
	"github.com/felixgeelhaar/intakerouter/pkg/domain"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
)

func TestRouteSpec(t *testing.T) {
	e := newEnv(t)

	res, err := e.routing.RouteSpec(specWith(intake.ClassificationRestricted))
	if err != nil {
		t.Fatal(err)
	}
	if res.Path != routing.PathCritical {
		t.Errorf("path = %s", res.Path)
	}

	if _, err := e.routing.RouteSpec(&intake.StructuredSpec{}); !errors.Is(err, intake.ErrInvalidSpec) {
		t.Errorf("expected ErrInvalidSpec, got %v", err)
	}
}

func TestRouteIntake(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.routing.RouteIntake(ctx, "missing", "u"); !errors.Is(err, application.ErrIntakeNotFound) {
		t.Fatalf("expected ErrIntakeNotFound, got %v", err)
	}

	in, _ := e.intakes.CreateIntake(application.CreateIntakeInput{Title: "x"})
	if _, err := e.routing.RouteIntake(ctx, in.ID, "u"); !errors.Is(err, application.ErrNoSpec) {
		t.Fatalf("expected ErrNoSpec, got %v", err)
	}
	if _, err := e.routing.GetRouting(in.ID); !errors.Is(err, application.ErrNoRouting) {
		t.Fatalf("expected ErrNoRouting, got %v", err)
	}

	spec := specWith(intake.ClassificationInternal)
	if err := e.routing.SaveSpec(in.ID, spec, "u"); err != nil {
		t.Fatal(err)
	}
	rec, err := e.routing.RouteIntake(ctx, in.ID, "u", routing.WithTimeToMarket(90))
	if err != nil {
		t.Fatal(err)
	}
	if rec.Result.Breakdown.TimeToMarket != 90 || rec.RoutedBy != "u" || rec.ID == "" {
		t.Errorf("unexpected record %+v", rec)
	}

	status, err := e.routing.GetRouting(in.ID)
	if err != nil {
		t.Fatal(err)
	}
	if status.Stale || status.CurrentSpecHash != spec.Hash() {
		t.Errorf("fresh routing reported stale: %+v", status)
	}

	changed := specWith(intake.ClassificationConfidential)
	if err := e.routing.SaveSpec(in.ID, changed, "u"); err != nil {
		t.Fatal(err)
	}
	status, _ = e.routing.GetRouting(in.ID)
	if !status.Stale {
		t.Error("routing should be stale after the spec changed")
	}

	events, _ := e.audit.EntityTimeline(domain.IntakeRef(in.ID))
	got := actions(t, events)
	want := []string{domain.ActionIntakeCreated, domain.ActionSpecSaved, domain.ActionIntakeRouted, domain.ActionSpecSaved}
	if len(got) != len(want) {
		t.Fatalf("actions = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("action %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSaveSpec_RejectsMissingClassification(t *testing.T) {
	e := newEnv(t)
	in, _ := e.intakes.CreateIntake(application.CreateIntakeInput{Title: "x"})

	err := e.routing.SaveSpec(in.ID, &intake.StructuredSpec{ProblemStatement: "p"}, "u")
	if !errors.Is(err, intake.ErrInvalidSpec) {
		t.Fatalf("expected ErrInvalidSpec, got %v", err)
	}
}

type memHistory struct {
	saved   []*domain.RoutingRecord
	saveErr error
}

func (m *memHistory) Save(_ context.Context, rec *domain.RoutingRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append([]*domain.RoutingRecord{rec}, m.saved...)
	return nil
}

func (m *memHistory) History(_ context.Context, _ string, _ int) ([]*domain.RoutingRecord, error) {
	return m.saved, nil
}

func TestRoutingHistory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	in, _ := e.intakes.CreateIntake(application.CreateIntakeInput{Title: "x"})
	_ = e.routing.SaveSpec(in.ID, specWith(intake.ClassificationInternal), "u")

	history, err := e.routing.History(ctx, in.ID, 10)
	if err != nil || len(history) != 0 {
		t.Fatalf("expected empty history, got %v %v", history, err)
	}

	if _, err := e.routing.RouteIntake(ctx, in.ID, "u"); err != nil {
		t.Fatal(err)
	}
	history, _ = e.routing.History(ctx, in.ID, 10)
	if len(history) != 1 {
		t.Fatalf("filesystem history should hold the latest record, got %d", len(history))
	}

	store := &memHistory{}
	e.routing.WithHistory(store)
	for i := 0; i < 2; i++ {
		if _, err := e.routing.RouteIntake(ctx, in.ID, "u"); err != nil {
			t.Fatal(err)
		}
	}
	history, _ = e.routing.History(ctx, in.ID, 10)
	if len(history) != 2 {
		t.Errorf("expected 2 mirrored records, got %d", len(history))
	}

	before, err := e.repo.LoadRouting(in.ID)
	if err != nil {
		t.Fatal(err)
	}
	store.saveErr = errors.New("db down")
	if _, err := e.routing.RouteIntake(ctx, in.ID, "u"); err == nil {
		t.Error("history failures should surface")
	}
	after, err := e.repo.LoadRouting(in.ID)
	if err != nil || after.ID != before.ID {
		t.Errorf("failed history save replaced the workspace record: %v", err)
	}
}

func TestRouteIntake_SettledIntake(t *testing.T) {
	e := newEnv(t)
	in := e.routedIntake(t, specWith(intake.ClassificationInternal))
	if _, err := e.intakes.Transition(in.ID, intake.EventSubmit, "req-1"); err != nil {
		t.Fatal(err)
	}

	if _, err := e.routing.RouteIntake(context.Background(), in.ID, "u"); !errors.Is(err, application.ErrIntakeLocked) {
		t.Fatalf("approved intake should not be re-routed, got %v", err)
	}
	if err := e.routing.SaveSpec(in.ID, specWith(intake.ClassificationInternal), "u"); err != nil {
		t.Errorf("saving the unchanged spec should succeed: %v", err)
	}
}
