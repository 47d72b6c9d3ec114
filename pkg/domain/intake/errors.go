package intake

import (
	"errors"
	"strings"
)

// Domain errors for intake handling.
var (
	// ErrInvalidSpec indicates the structured spec violates the caller contract.
	ErrInvalidSpec = errors.New("invalid structured spec")

	// ErrInvalidTransition indicates the requested lifecycle transition is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// InvalidSpecError names the field that broke the contract. Schema checks
// collect every violation they find.
type InvalidSpecError struct {
	Field      string
	Reason     string
	Violations []string
}

func (e *InvalidSpecError) Error() string {
	msg := "invalid structured spec"
	detail := strings.TrimSpace(e.Field + " " + e.Reason)
	if detail != "" {
		msg += ": " + detail
	}
	if len(e.Violations) > 0 {
		msg += " (" + strings.Join(e.Violations, "; ") + ")"
	}
	return msg
}

// Is allows errors.Is to work with InvalidSpecError.
func (e *InvalidSpecError) Is(target error) bool {
	return target == ErrInvalidSpec
}

// TransitionError provides details about a rejected lifecycle transition.
type TransitionError struct {
	IntakeID   string
	FromStatus Status
	Event      string
}

func (e *TransitionError) Error() string {
	return "cannot apply '" + e.Event + "' to intake " + e.IntakeID + " in status " + string(e.FromStatus)
}

// Is allows errors.Is to work with TransitionError.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
