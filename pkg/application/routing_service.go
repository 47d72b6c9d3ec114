package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/intakerouter/pkg/domain"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
	"github.com/google/uuid"
)

// RoutingHistory is an optional append-only store of every routing decision.
type RoutingHistory interface {
	Save(ctx context.Context, rec *domain.RoutingRecord) error
	History(ctx context.Context, intakeID string, limit int) ([]*domain.RoutingRecord, error)
}

// RoutingStatus is the stored routing of an intake checked against its
// current spec.
type RoutingStatus struct {
	Record          *domain.RoutingRecord `json:"record"`
	CurrentSpecHash string                `json:"current_spec_hash"`
	Stale           bool                  `json:"stale"`
}

type RoutingService struct {
	repo    domain.WorkspaceRepository
	policy  *PolicyService
	audit   domain.AuditLogger
	history RoutingHistory
	now     func() time.Time
}

func NewRoutingService(repo domain.WorkspaceRepository, policy *PolicyService, audit domain.AuditLogger) *RoutingService {
	return &RoutingService{repo: repo, policy: policy, audit: audit, now: time.Now}
}

// WithHistory mirrors every saved decision into h.
func (s *RoutingService) WithHistory(h RoutingHistory) *RoutingService {
	s.history = h
	return s
}

// RouteSpec routes a spec with the active policy. Nothing is stored.
func (s *RoutingService) RouteSpec(spec *intake.StructuredSpec, opts ...routing.RouteOption) (*routing.Result, error) {
	return s.policy.Engine().Route(spec, opts...)
}

// SaveSpec validates and stores the structured spec of an intake. Once an
// intake is submitted its spec can only change after a revise; saving the
// same spec again is allowed.
func (s *RoutingService) SaveSpec(intakeID string, spec *intake.StructuredSpec, actor string) error {
	in, err := s.loadIntake(intakeID)
	if err != nil {
		return err
	}
	if err := spec.Validate(); err != nil {
		return err
	}
	if specLocked(in.Status) {
		stored, err := s.repo.LoadSpec(intakeID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if stored == nil || stored.Hash() != spec.Hash() {
			return fmt.Errorf("%w: intake %s is %s; revise it before changing the spec", ErrIntakeLocked, intakeID, in.Status)
		}
	}
	if err := s.repo.SaveSpec(intakeID, spec); err != nil {
		return fmt.Errorf("failed to save spec: %w", err)
	}
	return s.audit.Log(domain.ActionSpecSaved, actor, domain.IntakeRef(intakeID), map[string]interface{}{
		"spec_hash": spec.Hash(),
	})
}

// RouteIntake routes the stored spec of an intake and records the result.
// A previous result is replaced, never edited. The history store is written
// first so a failed save leaves the workspace record untouched.
func (s *RoutingService) RouteIntake(ctx context.Context, intakeID, actor string, opts ...routing.RouteOption) (*domain.RoutingRecord, error) {
	in, err := s.loadIntake(intakeID)
	if err != nil {
		return nil, err
	}
	if routingSettled(in.Status) {
		return nil, fmt.Errorf("%w: intake %s is %s", ErrIntakeLocked, intakeID, in.Status)
	}
	spec, err := s.loadSpec(intakeID)
	if err != nil {
		return nil, err
	}

	result, err := s.RouteSpec(spec, opts...)
	if err != nil {
		return nil, err
	}

	rec := &domain.RoutingRecord{
		ID:       uuid.New().String(),
		IntakeID: intakeID,
		Result:   *result,
		RoutedAt: s.now().UTC(),
		RoutedBy: actor,
	}
	if s.history != nil {
		if err := s.history.Save(ctx, rec); err != nil {
			return nil, fmt.Errorf("failed to record routing history: %w", err)
		}
	}
	if err := s.repo.SaveRouting(rec); err != nil {
		return nil, fmt.Errorf("failed to save routing: %w", err)
	}

	if err := s.audit.Log(domain.ActionIntakeRouted, actor, domain.IntakeRef(intakeID), map[string]interface{}{
		"path":      string(result.Path),
		"score":     result.Score,
		"rule":      result.Rule,
		"spec_hash": result.SpecHash,
	}); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetRouting returns the stored routing and whether the spec changed since.
func (s *RoutingService) GetRouting(intakeID string) (*RoutingStatus, error) {
	rec, err := s.repo.LoadRouting(intakeID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNoRouting, intakeID)
	}
	if err != nil {
		return nil, err
	}

	status := &RoutingStatus{Record: rec}
	spec, err := s.repo.LoadSpec(intakeID)
	switch {
	case err == nil:
		status.CurrentSpecHash = spec.Hash()
		status.Stale = status.CurrentSpecHash != rec.Result.SpecHash
	case errors.Is(err, domain.ErrNotFound):
		status.Stale = true
	default:
		return nil, err
	}
	return status, nil
}

// History returns past decisions for an intake, newest first. Without a
// history store only the current record is known.
func (s *RoutingService) History(ctx context.Context, intakeID string, limit int) ([]*domain.RoutingRecord, error) {
	if s.history != nil {
		return s.history.History(ctx, intakeID, limit)
	}
	rec, err := s.repo.LoadRouting(intakeID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []*domain.RoutingRecord{rec}, nil
}

func (s *RoutingService) loadIntake(id string) (*intake.Intake, error) {
	in, err := s.repo.LoadIntake(id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrIntakeNotFound, id)
	}
	return in, err
}

func (s *RoutingService) loadSpec(id string) (*intake.StructuredSpec, error) {
	spec, err := s.repo.LoadSpec(id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNoSpec, id)
	}
	return spec, err
}

func specLocked(st intake.Status) bool {
	switch st {
	case intake.StatusPendingApproval, intake.StatusApproved, intake.StatusExported, intake.StatusClosed:
		return true
	}
	return false
}

// routingSettled reports whether the routing decision is final. A pending
// intake may still be re-routed; decisions made on the old record stop
// counting.
func routingSettled(st intake.Status) bool {
	return st != intake.StatusPendingApproval && specLocked(st)
}
