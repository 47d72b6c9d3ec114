package intake

import (
	"fmt"
	"sort"
	"time"
)

// Status is the lifecycle stage of an intake.
type Status string

const (
	StatusDraft           Status = "draft"
	StatusGatheringInfo   Status = "gathering_info"
	StatusSpecGenerated   Status = "spec_generated"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusExported        Status = "exported"
	StatusClosed          Status = "closed"
)

// Lifecycle events.
const (
	EventGather       = "gather"
	EventGenerateSpec = "generate_spec"
	EventSubmit       = "submit"
	EventApprove      = "approve"
	EventReject       = "reject"
	EventRevise       = "revise"
	EventExport       = "export"
	EventClose        = "close"
)

// validTransitions maps currentStatus -> event -> targetStatus.
var validTransitions = map[Status]map[string]Status{
	StatusDraft: {
		EventGather:       StatusGatheringInfo,
		EventGenerateSpec: StatusSpecGenerated,
		EventClose:        StatusClosed,
	},
	StatusGatheringInfo: {
		EventGenerateSpec: StatusSpecGenerated,
		EventClose:        StatusClosed,
	},
	StatusSpecGenerated: {
		EventSubmit: StatusPendingApproval,
		EventRevise: StatusGatheringInfo,
		EventClose:  StatusClosed,
	},
	StatusPendingApproval: {
		EventApprove: StatusApproved,
		EventReject:  StatusRejected,
		EventRevise:  StatusGatheringInfo,
		EventClose:   StatusClosed,
	},
	StatusApproved: {
		EventExport: StatusExported,
		EventClose:  StatusClosed,
	},
	StatusRejected: {
		EventRevise: StatusGatheringInfo,
		EventClose:  StatusClosed,
	},
	StatusExported: {
		EventClose: StatusClosed,
	},
	StatusClosed: {},
}

// AllStatuses returns every lifecycle status in workflow order.
func AllStatuses() []Status {
	return []Status{
		StatusDraft,
		StatusGatheringInfo,
		StatusSpecGenerated,
		StatusPendingApproval,
		StatusApproved,
		StatusRejected,
		StatusExported,
		StatusClosed,
	}
}

func (s Status) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

func (s Status) String() string {
	return string(s)
}

// CanTransitionWith returns true if the event can fire from this status.
func (s Status) CanTransitionWith(event string) bool {
	_, ok := validTransitions[s][event]
	return ok
}

// ValidEvents returns the events accepted in this status, sorted.
func (s Status) ValidEvents() []string {
	events := make([]string, 0, len(validTransitions[s]))
	for ev := range validTransitions[s] {
		events = append(events, ev)
	}
	sort.Strings(events)
	return events
}

// IsFinal returns true once no further events are accepted.
func (s Status) IsFinal() bool {
	return s == StatusClosed
}

// ParseStatus converts a string to a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown intake status %q", raw)
	}
	return s, nil
}

// Intake is a single request for a software capability.
type Intake struct {
	ID            string    `json:"id" yaml:"id"`
	Title         string    `json:"title" yaml:"title"`
	Status        Status    `json:"status" yaml:"status"`
	RequesterID   string    `json:"requester_id" yaml:"requester_id"`
	RequesterName string    `json:"requester_name" yaml:"requester_name"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"updated_at"`
	ValueStream   string    `json:"value_stream,omitempty" yaml:"value_stream,omitempty"`
	Category      string    `json:"category,omitempty" yaml:"category,omitempty"`
	Priority      string    `json:"priority,omitempty" yaml:"priority,omitempty"`
}
