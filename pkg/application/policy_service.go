package application

import (
	"fmt"
	"sync/atomic"

	"github.com/felixgeelhaar/intakerouter/pkg/domain"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/approval"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
)

// PolicyRepository is the slice of the workspace the policy service needs.
type PolicyRepository interface {
	LoadPolicy() (*domain.PolicyConfig, error)
	SavePolicy(cfg *domain.PolicyConfig) error
}

type activePolicy struct {
	cfg    *domain.PolicyConfig
	engine *routing.Engine
}

// PolicyService owns the active routing engine. Reloads swap the engine
// atomically; callers that already hold an engine keep using it.
type PolicyService struct {
	repo    PolicyRepository
	audit   domain.AuditLogger
	current atomic.Pointer[activePolicy]
}

// NewPolicyService loads the workspace policy. A nil repo serves defaults.
func NewPolicyService(repo PolicyRepository, audit domain.AuditLogger) (*PolicyService, error) {
	s := &PolicyService{repo: repo, audit: audit}
	if repo == nil {
		if err := s.Apply(domain.DefaultPolicyConfig()); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the policy from the repository. On failure the previous
// policy stays active.
func (s *PolicyService) Reload() error {
	if s.repo == nil {
		return nil
	}
	cfg, err := s.repo.LoadPolicy()
	if err != nil {
		return fmt.Errorf("failed to load policy: %w", err)
	}
	return s.Apply(cfg)
}

// Apply validates cfg and makes it the active policy.
func (s *PolicyService) Apply(cfg *domain.PolicyConfig) error {
	if cfg == nil {
		cfg = domain.DefaultPolicyConfig()
	}
	engine, err := routing.NewEngine(cfg.Routing)
	if err != nil {
		return err
	}
	copied := *cfg
	copied.Routing = engine.Config()
	s.current.Store(&activePolicy{cfg: &copied, engine: engine})
	return nil
}

// Update validates, persists and activates cfg.
func (s *PolicyService) Update(cfg *domain.PolicyConfig, actor string) error {
	if err := cfg.Routing.Validate(); err != nil {
		return err
	}
	if s.repo != nil {
		if err := s.repo.SavePolicy(cfg); err != nil {
			return fmt.Errorf("failed to save policy: %w", err)
		}
	}
	if err := s.Apply(cfg); err != nil {
		return err
	}
	if s.audit != nil {
		return s.audit.Log(domain.ActionPolicyUpdated, actor, domain.EntityRef{Type: "policy", ID: "workspace"}, map[string]interface{}{
			"unknown_classification": string(cfg.Routing.UnknownClassification),
			"default_time_to_market": cfg.Routing.DefaultTimeToMarket,
		})
	}
	return nil
}

func (s *PolicyService) Engine() *routing.Engine {
	return s.current.Load().engine
}

// Policy returns a copy of the active policy.
func (s *PolicyService) Policy() *domain.PolicyConfig {
	cfg := *s.current.Load().cfg
	cfg.Routing = cfg.Routing.Clone()
	return &cfg
}

func (s *PolicyService) Rules() approval.RuleSet {
	return s.current.Load().cfg.Rules()
}
