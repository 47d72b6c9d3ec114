package routing

import "errors"

var (
	// ErrUnknownClassification is returned under PolicyReject when the spec
	// carries a classification outside the known set.
	ErrUnknownClassification = errors.New("unknown data classification")

	// ErrInvalidConfig indicates a routing configuration failed validation.
	ErrInvalidConfig = errors.New("invalid routing config")

	// ErrUnknownPath indicates a delivery path string could not be parsed.
	ErrUnknownPath = errors.New("unknown delivery path")
)
