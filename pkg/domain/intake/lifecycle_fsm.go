package intake

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// State constants for statekit integration. They stay untyped so they
// convert to statekit.StateID; init keeps them in sync with Status.
const (
	StateDraft           = "draft"
	StateGatheringInfo   = "gathering_info"
	StateSpecGenerated   = "spec_generated"
	StatePendingApproval = "pending_approval"
	StateApproved        = "approved"
	StateRejected        = "rejected"
	StateExported        = "exported"
	StateClosed          = "closed"
)

func init() {
	stateMap := map[string]Status{
		StateDraft:           StatusDraft,
		StateGatheringInfo:   StatusGatheringInfo,
		StateSpecGenerated:   StatusSpecGenerated,
		StatePendingApproval: StatusPendingApproval,
		StateApproved:        StatusApproved,
		StateRejected:        StatusRejected,
		StateExported:        StatusExported,
		StateClosed:          StatusClosed,
	}
	for fsmState, status := range stateMap {
		if fsmState != string(status) {
			panic(fmt.Sprintf("FSM state %q does not match Status %q - constants are out of sync", fsmState, status))
		}
	}
}

// LifecycleContext carries the data guards need.
type LifecycleContext struct {
	IntakeID string
	Guard    func(intakeID string, event string) bool
}

// LifecycleMachine drives an intake through its workflow.
type LifecycleMachine struct {
	intakeID    string
	interpreter *statekit.Interpreter[LifecycleContext]
}

// NewLifecycleMachine builds a machine positioned at initial. The guard is
// consulted for approve and export; nil allows everything.
func NewLifecycleMachine(initial Status, intakeID string, guard func(string, string) bool) (*LifecycleMachine, error) {
	if !initial.IsValid() {
		return nil, fmt.Errorf("unknown intake status %q", initial)
	}
	if guard == nil {
		guard = func(string, string) bool { return true }
	}

	builder := statekit.NewMachine[LifecycleContext]("intake-lifecycle").
		WithInitial(statekit.StateID(initial)).
		WithContext(LifecycleContext{
			IntakeID: intakeID,
			Guard:    guard,
		}).
		WithGuard("approvalGuard", func(ctx LifecycleContext, e statekit.Event) bool {
			return ctx.Guard(ctx.IntakeID, string(e.Type))
		})

	builder.State(StateDraft).
		On(EventGather).Target(StateGatheringInfo).
		On(EventGenerateSpec).Target(StateSpecGenerated).
		On(EventClose).Target(StateClosed).
		Done()

	builder.State(StateGatheringInfo).
		On(EventGenerateSpec).Target(StateSpecGenerated).
		On(EventClose).Target(StateClosed).
		Done()

	builder.State(StateSpecGenerated).
		On(EventSubmit).Target(StatePendingApproval).
		On(EventRevise).Target(StateGatheringInfo).
		On(EventClose).Target(StateClosed).
		Done()

	builder.State(StatePendingApproval).
		On(EventApprove).Target(StateApproved).Guard("approvalGuard").
		On(EventReject).Target(StateRejected).
		On(EventRevise).Target(StateGatheringInfo).
		On(EventClose).Target(StateClosed).
		Done()

	builder.State(StateApproved).
		On(EventExport).Target(StateExported).Guard("approvalGuard").
		On(EventClose).Target(StateClosed).
		Done()

	builder.State(StateRejected).
		On(EventRevise).Target(StateGatheringInfo).
		On(EventClose).Target(StateClosed).
		Done()

	builder.State(StateExported).
		On(EventClose).Target(StateClosed).
		Done()

	// Closed is terminal; the self-loop is reported as a failed transition by Fire.
	builder.State(StateClosed).
		On(EventClose).Target(StateClosed).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build lifecycle machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &LifecycleMachine{intakeID: intakeID, interpreter: interpreter}, nil
}

// Fire sends an event. Unknown events and failed guards leave the state
// unchanged and return a *TransitionError.
func (m *LifecycleMachine) Fire(event string) error {
	before := m.Current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if m.Current() != before {
		return nil
	}
	return &TransitionError{IntakeID: m.intakeID, FromStatus: before, Event: event}
}

func (m *LifecycleMachine) Current() Status {
	return Status(m.interpreter.State().Value)
}

// CanFire delegates to the Status value object.
func (m *LifecycleMachine) CanFire(event string) bool {
	return m.Current().CanTransitionWith(event)
}
