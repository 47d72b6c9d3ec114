package sdk

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoContent is returned when a tool result contains no content items.
var ErrNoContent = errors.New("intakerouter: empty tool result")

// Sentinels matched by errors.Is against a ToolError.
var (
	ErrIntakeNotFound = errors.New("intakerouter: intake not found")
	ErrNotRouted      = errors.New("intakerouter: intake not routed")
	ErrNotInitialized = errors.New("intakerouter: workspace not initialized")
)

// ToolError is the message of a tool call that returned an error result.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("intakerouter: tool %s: %s", e.Tool, e.Message)
}

// Unwrap maps the server's message onto a sentinel so callers can branch
// without string matching.
func (e *ToolError) Unwrap() error {
	switch {
	case strings.HasPrefix(e.Message, "Intake not found"):
		return ErrIntakeNotFound
	case strings.Contains(e.Message, "has not been routed"):
		return ErrNotRouted
	case strings.Contains(e.Message, "not initialized"):
		return ErrNotInitialized
	}
	return nil
}
