package domain

import (
	"errors"
	"time"

	"github.com/felixgeelhaar/intakerouter/pkg/domain/approval"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// WorkspaceRepository persists intake artifacts in the .intake/ directory.
type WorkspaceRepository interface {
	Initialize() error
	IsInitialized() bool
	SaveIntake(in *intake.Intake) error
	LoadIntake(id string) (*intake.Intake, error)
	ListIntakes() ([]*intake.Intake, error)
	SaveSpec(intakeID string, spec *intake.StructuredSpec) error
	LoadSpec(intakeID string) (*intake.StructuredSpec, error)
	SaveRouting(rec *RoutingRecord) error
	LoadRouting(intakeID string) (*RoutingRecord, error)
	SaveApprovals(intakeID string, approvals []approval.Approval) error
	LoadApprovals(intakeID string) ([]approval.Approval, error)
	SavePolicy(cfg *PolicyConfig) error
	LoadPolicy() (*PolicyConfig, error)
	AuditRepository
}

// RoutingRecord is a stored routing result. It belongs to the spec version
// identified by Result.SpecHash and is replaced, never edited, on re-route.
type RoutingRecord struct {
	ID       string         `json:"id"`
	IntakeID string         `json:"intake_id"`
	Result   routing.Result `json:"result"`
	RoutedAt time.Time      `json:"routed_at"`
	RoutedBy string         `json:"routed_by,omitempty"`
}

// PolicyConfig is the serialized representation of policy.yaml. Fields left
// out of the file keep their defaults.
type PolicyConfig struct {
	Routing routing.Config `yaml:"routing" json:"routing"`
	// BlockRestrictedDisposable enables the restricted-data rule for AI Disposable.
	BlockRestrictedDisposable bool `yaml:"block_restricted_disposable" json:"block_restricted_disposable"`
	// RequireKillDate enables the kill-date rule for AI Disposable.
	RequireKillDate bool `yaml:"require_kill_date" json:"require_kill_date"`
}

// DefaultPolicyConfig returns the policy used when policy.yaml is absent.
func DefaultPolicyConfig() *PolicyConfig {
	return &PolicyConfig{
		Routing:                   routing.DefaultConfig(),
		BlockRestrictedDisposable: true,
		RequireKillDate:           true,
	}
}

// Rules returns the approval rules enabled by the policy.
func (p *PolicyConfig) Rules() approval.RuleSet {
	var rs approval.RuleSet
	if p.BlockRestrictedDisposable {
		rs.Rules = append(rs.Rules, &approval.RestrictedDisposableRule{})
	}
	if p.RequireKillDate {
		rs.Rules = append(rs.Rules, &approval.KillDateRule{})
	}
	return rs
}
