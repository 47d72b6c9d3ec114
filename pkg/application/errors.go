package application

import "errors"

var (
	ErrIntakeNotFound   = errors.New("intake not found")
	ErrNoSpec           = errors.New("intake has no structured spec")
	ErrNoRouting        = errors.New("intake has not been routed")
	ErrApprovalRequired = errors.New("approval requirements not met")
	ErrNotInitialized   = errors.New("workspace not initialized")
	ErrIntakeLocked     = errors.New("intake is locked for changes")
	ErrStaleRouting     = errors.New("routing is stale, re-route the intake")
)
