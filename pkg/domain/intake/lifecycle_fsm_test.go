package intake_test

import (
	"errors"
	"testing"

	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
)

func TestLifecycleMachine(t *testing.T) {
	m, err := intake.NewLifecycleMachine(intake.StatusDraft, "i1", nil)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	for _, ev := range []string{intake.EventGather, intake.EventGenerateSpec, intake.EventSubmit, intake.EventApprove, intake.EventExport} {
		if err := m.Fire(ev); err != nil {
			t.Fatalf("Fire(%s) failed: %v", ev, err)
		}
	}
	if m.Current() != intake.StatusExported {
		t.Errorf("expected exported, got %s", m.Current())
	}

	if err := m.Fire(intake.EventApprove); !errors.Is(err, intake.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestLifecycleMachine_Guard(t *testing.T) {
	var seen []string
	deny := func(id, ev string) bool {
		seen = append(seen, id+":"+ev)
		return false
	}

	m, err := intake.NewLifecycleMachine(intake.StatusPendingApproval, "i2", deny)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	err = m.Fire(intake.EventApprove)
	var te *intake.TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransitionError, got %v", err)
	}
	if te.FromStatus != intake.StatusPendingApproval || te.Event != intake.EventApprove {
		t.Errorf("unexpected error detail: %+v", te)
	}
	if m.Current() != intake.StatusPendingApproval {
		t.Error("state changed despite failing guard")
	}
	if len(seen) == 0 || seen[0] != "i2:approve" {
		t.Errorf("guard not consulted: %v", seen)
	}

	// Reject is not guarded.
	if err := m.Fire(intake.EventReject); err != nil {
		t.Errorf("reject failed: %v", err)
	}
}

func TestLifecycleMachine_ClosedIsTerminal(t *testing.T) {
	m, err := intake.NewLifecycleMachine(intake.StatusRejected, "i3", nil)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := m.Fire(intake.EventClose); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !m.Current().IsFinal() {
		t.Error("expected final status")
	}
	for _, ev := range []string{intake.EventClose, intake.EventRevise, intake.EventGather} {
		if err := m.Fire(ev); err == nil {
			t.Errorf("Fire(%s) on closed intake should fail", ev)
		}
	}
}

func TestNewLifecycleMachine_UnknownStatus(t *testing.T) {
	if _, err := intake.NewLifecycleMachine("archived", "i4", nil); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestStatus_ValidEvents(t *testing.T) {
	got := intake.StatusPendingApproval.ValidEvents()
	want := []string{"approve", "close", "reject", "revise"}
	if len(got) != len(want) {
		t.Fatalf("ValidEvents() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ValidEvents()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if len(intake.StatusClosed.ValidEvents()) != 0 {
		t.Error("closed should accept no events")
	}
}

func TestMachineAgreesWithStatusTable(t *testing.T) {
	events := []string{
		intake.EventGather, intake.EventGenerateSpec, intake.EventSubmit, intake.EventApprove,
		intake.EventReject, intake.EventRevise, intake.EventExport, intake.EventClose,
	}
	for _, st := range intake.AllStatuses() {
		for _, ev := range events {
			m, err := intake.NewLifecycleMachine(st, "x", nil)
			if err != nil {
				t.Fatalf("Init failed: %v", err)
			}
			fired := m.Fire(ev) == nil
			if fired != st.CanTransitionWith(ev) {
				t.Errorf("%s --%s--> machine=%v table=%v", st, ev, fired, st.CanTransitionWith(ev))
			}
		}
	}
}

func TestParseStatus(t *testing.T) {
	if s, err := intake.ParseStatus("approved"); err != nil || s != intake.StatusApproved {
		t.Errorf("ParseStatus(approved) = %s, %v", s, err)
	}
	if _, err := intake.ParseStatus("bogus"); err == nil {
		t.Error("expected error for unknown status")
	}
}
