package approval_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/intakerouter/pkg/domain/approval"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
)

func approved(role approval.Role) approval.Approval {
	return approval.Approval{Role: role, Decision: approval.DecisionApproved}
}

func TestEvaluate(t *testing.T) {
	killDate := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	disposableSignoff := approved(approval.RoleArchitect)
	disposableSignoff.KillDate = &killDate

	tests := []struct {
		name         string
		req          approval.Request
		wantApproved bool
		wantAuto     bool
		wantMissing  int
	}{
		{
			name:         "buy below threshold auto-approves",
			req:          approval.Request{Path: routing.PathBuy, Score: 25, Classification: intake.ClassificationInternal},
			wantApproved: true,
			wantAuto:     true,
			wantMissing:  1,
		},
		{
			name:        "buy at threshold needs architect",
			req:         approval.Request{Path: routing.PathBuy, Score: 30, Classification: intake.ClassificationInternal},
			wantMissing: 1,
		},
		{
			name: "config with architect",
			req: approval.Request{Path: routing.PathConfig, Score: 40, Classification: intake.ClassificationInternal,
				Approvals: []approval.Approval{approved(approval.RoleArchitect)}},
			wantApproved: true,
		},
		{
			name: "product grade needs engineer lead",
			req: approval.Request{Path: routing.PathProductGrade, Score: 55, Classification: intake.ClassificationInternal,
				Approvals: []approval.Approval{approved(approval.RoleArchitect)}},
			wantMissing: 1,
		},
		{
			name: "critical is never automatic",
			req: approval.Request{Path: routing.PathCritical, Score: 10, Classification: intake.ClassificationPublic,
				Approvals: []approval.Approval{approved(approval.RoleArchitect), approved(approval.RoleEngineerLead)}},
			wantMissing: 1,
		},
		{
			name: "confidential data adds security",
			req: approval.Request{Path: routing.PathConfig, Score: 40, Classification: intake.ClassificationConfidential,
				Approvals: []approval.Approval{approved(approval.RoleArchitect)}},
			wantMissing: 1,
		},
		{
			name:         "disposable public auto-approves",
			req:          approval.Request{Path: routing.PathAIDisposable, Score: 28, Classification: intake.ClassificationPublic},
			wantApproved: true,
			wantAuto:     true,
			wantMissing:  1,
		},
		{
			name: "restricted disposable is blocked",
			req: approval.Request{Path: routing.PathAIDisposable, Score: 28, Classification: intake.ClassificationRestricted,
				Approvals: []approval.Approval{disposableSignoff, approved(approval.RoleSecurity)}},
		},
		{
			name: "any rejection wins",
			req: approval.Request{Path: routing.PathConfig, Score: 40, Classification: intake.ClassificationInternal,
				Approvals: []approval.Approval{
					approved(approval.RoleArchitect),
					{Role: approval.RoleArchitect, Decision: approval.DecisionRejected},
				}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := approval.Evaluate(tt.req, approval.DefaultRules())
			if ev.Approved() != tt.wantApproved {
				t.Errorf("Approved() = %v, want %v (%+v)", ev.Approved(), tt.wantApproved, ev)
			}
			if ev.AutoApproved != tt.wantAuto {
				t.Errorf("AutoApproved = %v, want %v", ev.AutoApproved, tt.wantAuto)
			}
			if len(ev.Missing) != tt.wantMissing {
				t.Errorf("Missing = %v, want %d roles", ev.Missing, tt.wantMissing)
			}
		})
	}
}

func TestKillDateRule(t *testing.T) {
	rule := &approval.KillDateRule{}
	req := approval.Request{IntakeID: "i1", Path: routing.PathAIDisposable,
		Approvals: []approval.Approval{approved(approval.RoleArchitect)}}

	vs := rule.Validate(req)
	if len(vs) != 1 || vs[0].Level != approval.ViolationWarning {
		t.Fatalf("expected one warning, got %+v", vs)
	}

	when := time.Now().Add(90 * 24 * time.Hour)
	req.Approvals[0].KillDate = &when
	if vs := rule.Validate(req); len(vs) != 0 {
		t.Errorf("expected no violations, got %+v", vs)
	}

	req.Path = routing.PathBuy
	req.Approvals = nil
	if vs := rule.Validate(req); len(vs) != 0 {
		t.Errorf("rule should only apply to disposable deliveries")
	}
}

func TestDefaultGuardrails(t *testing.T) {
	tests := []struct {
		path     routing.DeliveryPath
		class    intake.DataClassification
		wantZone approval.DataZone
	}{
		{routing.PathBuy, intake.ClassificationPublic, approval.ZoneGreen},
		{routing.PathConfig, intake.ClassificationConfidential, approval.ZoneYellow},
		{routing.PathProductGrade, intake.ClassificationInternal, approval.ZoneYellow},
		{routing.PathProductGrade, intake.ClassificationRestricted, approval.ZoneRed},
		{routing.PathCritical, intake.ClassificationPublic, approval.ZoneRed},
	}
	for _, tt := range tests {
		g := approval.DefaultGuardrails(tt.path, tt.class)
		if g.DataZone != tt.wantZone {
			t.Errorf("%s/%s zone = %s, want %s", tt.path, tt.class, g.DataZone, tt.wantZone)
		}
		if len(g.RequiredTests) == 0 || len(g.RequiredReviews) == 0 {
			t.Errorf("%s: empty guardrails", tt.path)
		}
	}

	g := approval.DefaultGuardrails(routing.PathConfig, intake.ClassificationRestricted)
	hasSecurity := false
	for _, r := range g.RequiredReviews {
		if r == "security" {
			hasSecurity = true
		}
	}
	if !hasSecurity {
		t.Error("restricted data should require a security review")
	}

	// Returned slices are copies.
	g.RequiredTests[0] = "none"
	if approval.DefaultGuardrails(routing.PathConfig, intake.ClassificationRestricted).RequiredTests[0] == "none" {
		t.Error("guardrail defaults were mutated")
	}
}

func TestPolicyFor(t *testing.T) {
	if got := approval.PolicyFor(routing.PathProductGrade).RequiredApprovers; len(got) != 2 {
		t.Errorf("product grade approvers = %v", got)
	}
	if got := approval.PolicyFor("UNKNOWN"); got.AutoApprove.Kind != approval.AutoApproveNever {
		t.Errorf("unknown path should get the strictest policy, got %+v", got)
	}
}
