package approval

import (
	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
)

// AutoApproveKind selects how an intake can skip manual approval.
type AutoApproveKind string

const (
	AutoApproveNone       AutoApproveKind = "none"
	AutoApproveScoreBelow AutoApproveKind = "score_below"
	AutoApprovePublicData AutoApproveKind = "public_data"
	AutoApproveNever      AutoApproveKind = "never"
)

type AutoApproveRule struct {
	Kind      AutoApproveKind `json:"kind" yaml:"kind"`
	Threshold int             `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

// PathPolicy lists who must sign off a path and when sign-off is automatic.
type PathPolicy struct {
	Path              routing.DeliveryPath `json:"path" yaml:"path"`
	RequiredApprovers []Role               `json:"required_approvers" yaml:"required_approvers"`
	AutoApprove       AutoApproveRule      `json:"auto_approve" yaml:"auto_approve"`
}

// DefaultPolicies returns the approval workflow for every path, in path order.
func DefaultPolicies() []PathPolicy {
	return []PathPolicy{
		{
			Path:              routing.PathBuy,
			RequiredApprovers: []Role{RoleArchitect},
			AutoApprove:       AutoApproveRule{Kind: AutoApproveScoreBelow, Threshold: 30},
		},
		{
			Path:              routing.PathConfig,
			RequiredApprovers: []Role{RoleArchitect},
			AutoApprove:       AutoApproveRule{Kind: AutoApproveNone},
		},
		{
			Path:              routing.PathAIDisposable,
			RequiredApprovers: []Role{RoleArchitect},
			AutoApprove:       AutoApproveRule{Kind: AutoApprovePublicData},
		},
		{
			Path:              routing.PathProductGrade,
			RequiredApprovers: []Role{RoleArchitect, RoleEngineerLead},
			AutoApprove:       AutoApproveRule{Kind: AutoApproveNone},
		},
		{
			Path:              routing.PathCritical,
			RequiredApprovers: []Role{RoleArchitect, RoleEngineerLead, RoleSecurity},
			AutoApprove:       AutoApproveRule{Kind: AutoApproveNever},
		},
	}
}

// PolicyFor returns the default policy of a path. Unknown paths get the
// strictest policy.
func PolicyFor(p routing.DeliveryPath) PathPolicy {
	policies := DefaultPolicies()
	for _, pol := range policies {
		if pol.Path == p {
			return pol
		}
	}
	strict := policies[len(policies)-1]
	strict.Path = p
	return strict
}

// Request is everything needed to decide whether an intake may move to approved.
type Request struct {
	IntakeID       string
	Path           routing.DeliveryPath
	Score          int
	Classification intake.DataClassification
	Approvals      []Approval
}

// Evaluation is the approval state of a request.
type Evaluation struct {
	RequiredApprovers []Role `json:"required_approvers"`
	Missing           []Role `json:"missing"`
	AutoApproved      bool   `json:"auto_approved"`
	Rejected          bool   `json:"rejected"`
	// Stale is set when the spec changed after the routing was recorded.
	Stale      bool        `json:"stale,omitempty"`
	Violations []Violation `json:"violations,omitempty"`
}

// Approved reports whether the intake may transition to approved.
func (e Evaluation) Approved() bool {
	if e.Stale || e.Rejected || hasErrors(e.Violations) {
		return false
	}
	return e.AutoApproved || len(e.Missing) == 0
}

// Evaluate checks the recorded approvals against the path policy and rules.
// Confidential and restricted data always add a security approver.
func Evaluate(req Request, rules RuleSet) Evaluation {
	pol := PolicyFor(req.Path)
	required := append([]Role{}, pol.RequiredApprovers...)
	if req.Classification == intake.ClassificationConfidential || req.Classification == intake.ClassificationRestricted {
		required = appendMissingRole(required, RoleSecurity)
	}

	ev := Evaluation{RequiredApprovers: required}

	approvedBy := make(map[Role]bool)
	for _, a := range req.Approvals {
		switch a.Decision {
		case DecisionApproved:
			approvedBy[a.Role] = true
		case DecisionRejected:
			ev.Rejected = true
		}
	}
	for _, r := range required {
		if !approvedBy[r] {
			ev.Missing = append(ev.Missing, r)
		}
	}

	ev.AutoApproved = autoApproves(pol.AutoApprove, req) && len(required) == len(pol.RequiredApprovers)
	ev.Violations = rules.Validate(req)
	return ev
}

func autoApproves(rule AutoApproveRule, req Request) bool {
	switch rule.Kind {
	case AutoApproveScoreBelow:
		return req.Score < rule.Threshold
	case AutoApprovePublicData:
		return req.Classification == intake.ClassificationPublic
	default:
		return false
	}
}

func appendMissingRole(list []Role, r Role) []Role {
	for _, existing := range list {
		if existing == r {
			return list
		}
	}
	return append(list, r)
}
