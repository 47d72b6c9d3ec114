package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// idPattern matches valid ID formats. IDs become part of file names, so
// path separators and dots are excluded.
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// IntakeID is a validated intake identifier.
type IntakeID struct {
	value string
}

// NewIntakeID validates value as an intake identifier.
func NewIntakeID(value string) (IntakeID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return IntakeID{}, fmt.Errorf("intake ID cannot be empty")
	}
	if len(value) > 64 || !idPattern.MatchString(value) {
		return IntakeID{}, fmt.Errorf("invalid intake ID format: %s", value)
	}
	return IntakeID{value: value}, nil
}

// GenerateIntakeID returns a fresh random identifier.
func GenerateIntakeID() IntakeID {
	return IntakeID{value: "in-" + strings.SplitN(uuid.New().String(), "-", 2)[0]}
}

// MustIntakeID creates an IntakeID or panics if invalid. Use only in tests.
func MustIntakeID(value string) IntakeID {
	id, err := NewIntakeID(value)
	if err != nil {
		panic(err)
	}
	return id
}

func (id IntakeID) String() string {
	return id.value
}

func (id IntakeID) IsZero() bool {
	return id.value == ""
}
