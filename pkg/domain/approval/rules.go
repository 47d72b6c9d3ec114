package approval

import (
	"fmt"

	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
)

type ViolationLevel string

const (
	ViolationWarning ViolationLevel = "warning"
	ViolationError   ViolationLevel = "error"
)

// Violation represents a breach of an approval rule.
type Violation struct {
	RuleID  string         `json:"rule_id"`
	Message string         `json:"message"`
	Level   ViolationLevel `json:"level"`
}

// Rule is a constraint checked before an intake can be approved.
type Rule interface {
	ID() string
	Validate(req Request) []Violation
}

// RuleSet is a collection of enabled rules.
type RuleSet struct {
	Rules []Rule
}

// DefaultRules returns the rules enabled out of the box.
func DefaultRules() RuleSet {
	return RuleSet{Rules: []Rule{
		&RestrictedDisposableRule{},
		&KillDateRule{},
	}}
}

func (rs RuleSet) Validate(req Request) []Violation {
	var violations []Violation
	for _, rule := range rs.Rules {
		violations = append(violations, rule.Validate(req)...)
	}
	return violations
}

func hasErrors(vs []Violation) bool {
	for _, v := range vs {
		if v.Level == ViolationError {
			return true
		}
	}
	return false
}

// RestrictedDisposableRule keeps restricted data out of short-lived apps.
type RestrictedDisposableRule struct{}

func (r *RestrictedDisposableRule) ID() string { return "restricted-disposable" }

func (r *RestrictedDisposableRule) Validate(req Request) []Violation {
	if req.Path != routing.PathAIDisposable || req.Classification != intake.ClassificationRestricted {
		return nil
	}
	return []Violation{{
		RuleID:  r.ID(),
		Message: "restricted data cannot be delivered on the AI Disposable path",
		Level:   ViolationError,
	}}
}

// KillDateRule requires disposable deliveries to record a retirement date.
type KillDateRule struct{}

func (r *KillDateRule) ID() string { return "kill-date" }

func (r *KillDateRule) Validate(req Request) []Violation {
	if req.Path != routing.PathAIDisposable {
		return nil
	}
	for _, a := range req.Approvals {
		if a.Decision == DecisionApproved && a.KillDate != nil {
			return nil
		}
	}
	return []Violation{{
		RuleID:  r.ID(),
		Message: fmt.Sprintf("intake %s needs a kill date before it can be approved", req.IntakeID),
		Level:   ViolationWarning,
	}}
}
