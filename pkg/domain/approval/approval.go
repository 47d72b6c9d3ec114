package approval

import (
	"time"

	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
)

// Role is the capacity in which someone signs off an intake.
type Role string

const (
	RoleArchitect    Role = "architect"
	RoleEngineerLead Role = "engineer_lead"
	RoleSecurity     Role = "security"
)

// Decision is the outcome an approver records.
type Decision string

const (
	DecisionApproved      Decision = "approved"
	DecisionRejected      Decision = "rejected"
	DecisionNeedsRevision Decision = "needs_revision"
)

func (d Decision) IsValid() bool {
	switch d {
	case DecisionApproved, DecisionRejected, DecisionNeedsRevision:
		return true
	}
	return false
}

// DataZone is the hosting zone the delivered system may run in.
type DataZone string

const (
	ZoneGreen  DataZone = "green"
	ZoneYellow DataZone = "yellow"
	ZoneRed    DataZone = "red"
)

var zoneRank = map[DataZone]int{ZoneGreen: 0, ZoneYellow: 1, ZoneRed: 2}

// Guardrails are the delivery constraints attached to an approval.
type Guardrails struct {
	DataZone            DataZone `json:"data_zone" yaml:"data_zone"`
	AllowedTechnologies []string `json:"allowed_technologies,omitempty" yaml:"allowed_technologies,omitempty"`
	RequiredTests       []string `json:"required_tests" yaml:"required_tests"`
	RequiredReviews     []string `json:"required_reviews" yaml:"required_reviews"`
	ReleaseGates        []string `json:"release_gates" yaml:"release_gates"`
}

// Approval is one sign-off recorded against an intake.
type Approval struct {
	ID           string     `json:"id" yaml:"id"`
	IntakeID     string     `json:"intake_id" yaml:"intake_id"`
	ApproverID   string     `json:"approver_id" yaml:"approver_id"`
	ApproverName string     `json:"approver_name" yaml:"approver_name"`
	Role         Role       `json:"role" yaml:"role"`
	Decision     Decision   `json:"decision" yaml:"decision"`
	Guardrails   Guardrails `json:"guardrails" yaml:"guardrails"`
	DecidedAt    time.Time  `json:"decided_at" yaml:"decided_at"`
	Comments     string     `json:"comments,omitempty" yaml:"comments,omitempty"`
	// KillDate is the retirement date required for disposable deliveries.
	KillDate *time.Time `json:"kill_date,omitempty" yaml:"kill_date,omitempty"`
	// RoutingID is the routing record the decision was made against.
	RoutingID string `json:"routing_id,omitempty" yaml:"routing_id,omitempty"`
}

var pathGuardrails = map[routing.DeliveryPath]Guardrails{
	routing.PathBuy: {
		DataZone:        ZoneGreen,
		RequiredTests:   []string{"security"},
		RequiredReviews: []string{"vendor", "security"},
		ReleaseGates:    []string{"vendor security assessment"},
	},
	routing.PathConfig: {
		DataZone:        ZoneGreen,
		RequiredTests:   []string{"unit", "integration"},
		RequiredReviews: []string{"code", "architecture"},
		ReleaseGates:    []string{"platform owner sign-off"},
	},
	routing.PathAIDisposable: {
		DataZone:        ZoneGreen,
		RequiredTests:   []string{"e2e"},
		RequiredReviews: []string{"code"},
		ReleaseGates:    []string{"kill date recorded"},
	},
	routing.PathProductGrade: {
		DataZone:        ZoneYellow,
		RequiredTests:   []string{"unit", "integration", "e2e", "performance"},
		RequiredReviews: []string{"code", "architecture", "security"},
		ReleaseGates:    []string{"architecture review", "load test passed"},
	},
	routing.PathCritical: {
		DataZone:        ZoneRed,
		RequiredTests:   []string{"unit", "integration", "e2e", "security", "performance", "penetration"},
		RequiredReviews: []string{"code", "architecture", "security", "data", "external_audit"},
		ReleaseGates:    []string{"architecture review", "security sign-off", "external audit"},
	},
}

// DefaultGuardrails returns the standard guardrails for a path. Sensitive
// data raises the zone: confidential to at least yellow, restricted to red.
func DefaultGuardrails(p routing.DeliveryPath, c intake.DataClassification) Guardrails {
	base := pathGuardrails[p]
	g := Guardrails{
		DataZone:        base.DataZone,
		RequiredTests:   append([]string{}, base.RequiredTests...),
		RequiredReviews: append([]string{}, base.RequiredReviews...),
		ReleaseGates:    append([]string{}, base.ReleaseGates...),
	}
	if g.DataZone == "" {
		g.DataZone = ZoneGreen
	}

	switch c {
	case intake.ClassificationConfidential:
		g.DataZone = maxZone(g.DataZone, ZoneYellow)
	case intake.ClassificationRestricted:
		g.DataZone = ZoneRed
	}
	if c == intake.ClassificationConfidential || c == intake.ClassificationRestricted {
		g.RequiredReviews = appendMissing(g.RequiredReviews, "security", "data")
	}
	return g
}

func maxZone(a, b DataZone) DataZone {
	if zoneRank[b] > zoneRank[a] {
		return b
	}
	return a
}

func appendMissing(list []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range list {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			list = append(list, item)
		}
	}
	return list
}
