package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/intakerouter/pkg/application"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var specErr *intake.InvalidSpecError
	if errors.As(err, &specErr) {
		return &CLIError{
			Message:  "the structured spec is invalid",
			Hint:     "Check the spec file; dataClassification is required (public, internal, confidential or restricted)",
			Err:      err,
			ExitCode: 2,
		}
	}

	var transErr *intake.TransitionError
	if errors.As(err, &transErr) {
		return NewCLIError(
			"transition not allowed",
			fmt.Sprintf("Intake '%s' is '%s'; run 'intakerouter intake show %s' to list valid events", transErr.IntakeID, transErr.FromStatus, transErr.IntakeID),
			err,
		)
	}

	switch {
	case errors.Is(err, application.ErrNotInitialized):
		return NewCLIError("workspace is not initialized", "Run 'intakerouter init' first", err)
	case errors.Is(err, application.ErrIntakeNotFound):
		return NewCLIError("intake not found", "Run 'intakerouter intake list' to see available intakes", err)
	case errors.Is(err, application.ErrNoSpec):
		return NewCLIError("intake has no structured spec", "Run 'intakerouter route <file> --save <intake>' to attach one", err)
	case errors.Is(err, application.ErrNoRouting):
		return NewCLIError("intake has not been routed", "Run 'intakerouter route <file> --save <intake>' first", err)
	case errors.Is(err, application.ErrStaleRouting):
		return NewCLIError("routing is stale", "The spec changed after routing; revise the intake, then run 'intakerouter route <file> --save <intake>'", err)
	case errors.Is(err, application.ErrIntakeLocked):
		return NewCLIError("intake is locked", "Run 'intakerouter intake transition <intake> revise' before changing a submitted intake", err)
	case errors.Is(err, application.ErrApprovalRequired):
		return NewCLIError("approval required", "Record the missing sign-offs with 'intakerouter intake approve'", err)
	case errors.Is(err, routing.ErrUnknownClassification):
		return NewCLIError("unknown data classification", "Use public, internal, confidential or restricted, or set routing.unknown_classification to restrictive", err)
	case errors.Is(err, routing.ErrInvalidConfig):
		return NewCLIError("invalid routing policy", "Run 'intakerouter policy validate' to see every problem", err)
	}

	return err
}
