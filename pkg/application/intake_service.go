package application

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/intakerouter/pkg/domain"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/approval"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"github.com/google/uuid"
)

// AutoApproveActor is recorded when the policy approves an intake on submit.
const AutoApproveActor = "system:auto-approve"

type IntakeService struct {
	repo   domain.WorkspaceRepository
	audit  domain.AuditLogger
	policy *PolicyService
	now    func() time.Time
}

func NewIntakeService(repo domain.WorkspaceRepository, audit domain.AuditLogger, policy *PolicyService) *IntakeService {
	return &IntakeService{repo: repo, audit: audit, policy: policy, now: time.Now}
}

// CreateIntakeInput carries the requester-supplied fields of a new intake.
type CreateIntakeInput struct {
	ID            string
	Title         string
	RequesterID   string
	RequesterName string
	ValueStream   string
	Category      string
	Priority      string
}

func (s *IntakeService) CreateIntake(in CreateIntakeInput) (*intake.Intake, error) {
	if !s.repo.IsInitialized() {
		return nil, ErrNotInitialized
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("intake title is required")
	}

	id := domain.GenerateIntakeID()
	if in.ID != "" {
		parsed, err := domain.NewIntakeID(in.ID)
		if err != nil {
			return nil, err
		}
		if _, err := s.repo.LoadIntake(parsed.String()); err == nil {
			return nil, fmt.Errorf("intake %s already exists", parsed)
		}
		id = parsed
	}

	now := s.now().UTC()
	created := &intake.Intake{
		ID:            id.String(),
		Title:         title,
		Status:        intake.StatusDraft,
		RequesterID:   in.RequesterID,
		RequesterName: in.RequesterName,
		CreatedAt:     now,
		UpdatedAt:     now,
		ValueStream:   in.ValueStream,
		Category:      in.Category,
		Priority:      in.Priority,
	}
	if err := s.repo.SaveIntake(created); err != nil {
		return nil, fmt.Errorf("failed to save intake: %w", err)
	}
	if err := s.audit.Log(domain.ActionIntakeCreated, in.RequesterID, domain.IntakeRef(created.ID), map[string]interface{}{
		"title": title,
	}); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *IntakeService) GetIntake(id string) (*intake.Intake, error) {
	in, err := s.repo.LoadIntake(id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrIntakeNotFound, id)
	}
	return in, err
}

// ListIntakes returns intakes oldest first, optionally filtered by status.
func (s *IntakeService) ListIntakes(status intake.Status) ([]*intake.Intake, error) {
	all, err := s.repo.ListIntakes()
	if err != nil {
		return nil, err
	}
	if status == "" {
		return all, nil
	}
	var out []*intake.Intake
	for _, in := range all {
		if in.Status == status {
			out = append(out, in)
		}
	}
	return out, nil
}

// Transition fires a lifecycle event. Approve and export are guarded by the
// approval policy; a submit that the policy auto-approves moves straight on
// to approved.
func (s *IntakeService) Transition(id, event, actor string) (*intake.Intake, error) {
	in, err := s.GetIntake(id)
	if err != nil {
		return nil, err
	}
	if err := s.fire(in, event, actor); err != nil {
		return nil, err
	}

	if event == intake.EventSubmit {
		if ev, err := s.Evaluate(id); err == nil && ev.AutoApproved && ev.Approved() {
			if err := s.fire(in, intake.EventApprove, AutoApproveActor); err != nil {
				return nil, err
			}
		}
	}
	return in, nil
}

func (s *IntakeService) fire(in *intake.Intake, event, actor string) error {
	var denied *approval.Evaluation
	guard := func(intakeID, ev string) bool {
		eval, err := s.Evaluate(intakeID)
		if err != nil || !eval.Approved() {
			denied = eval
			return false
		}
		return true
	}

	machine, err := intake.NewLifecycleMachine(in.Status, in.ID, guard)
	if err != nil {
		return err
	}
	from := in.Status
	if err := machine.Fire(event); err != nil {
		if from.CanTransitionWith(event) {
			return approvalError(in.ID, denied)
		}
		return err
	}

	in.Status = machine.Current()
	in.UpdatedAt = s.now().UTC()
	if err := s.repo.SaveIntake(in); err != nil {
		return fmt.Errorf("failed to save intake: %w", err)
	}
	// A revised intake is decided afresh; the audit trail keeps the old decisions.
	if event == intake.EventRevise {
		if err := s.repo.SaveApprovals(in.ID, []approval.Approval{}); err != nil {
			return fmt.Errorf("failed to reset approvals: %w", err)
		}
	}
	return s.audit.Log(domain.ActionIntakeTransitioned, actor, domain.IntakeRef(in.ID), map[string]interface{}{
		"event": event,
		"from":  string(from),
		"to":    string(in.Status),
	})
}

func approvalError(id string, ev *approval.Evaluation) error {
	if ev == nil {
		return fmt.Errorf("%w: intake %s has no routing decision", ErrApprovalRequired, id)
	}
	var parts []string
	if ev.Stale {
		parts = append(parts, ErrStaleRouting.Error())
	}
	if ev.Rejected {
		parts = append(parts, "an approver rejected it")
	}
	if len(ev.Missing) > 0 {
		roles := make([]string, len(ev.Missing))
		for i, r := range ev.Missing {
			roles[i] = string(r)
		}
		parts = append(parts, "missing approval from "+strings.Join(roles, ", "))
	}
	for _, v := range ev.Violations {
		if v.Level == approval.ViolationError {
			parts = append(parts, v.Message)
		}
	}
	return fmt.Errorf("%w: intake %s: %s", ErrApprovalRequired, id, strings.Join(parts, "; "))
}

// Evaluate checks the recorded approvals of an intake against the policy of
// its routed path. Only decisions made against the current routing record
// count, and a routing whose spec hash no longer matches is never approved.
func (s *IntakeService) Evaluate(id string) (*approval.Evaluation, error) {
	rec, err := s.repo.LoadRouting(id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNoRouting, id)
	}
	if err != nil {
		return nil, err
	}
	spec, err := s.repo.LoadSpec(id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNoSpec, id)
	}
	if err != nil {
		return nil, err
	}
	approvals, err := s.repo.LoadApprovals(id)
	if err != nil {
		return nil, err
	}
	current := approvals[:0:0]
	for _, a := range approvals {
		if a.RoutingID == rec.ID {
			current = append(current, a)
		}
	}

	ev := approval.Evaluate(approval.Request{
		IntakeID:       id,
		Path:           rec.Result.Path,
		Score:          rec.Result.Score,
		Classification: effectiveClassification(spec.DataClassification),
		Approvals:      current,
	}, s.policy.Rules())
	ev.Stale = rec.Result.SpecHash != spec.Hash()
	return &ev, nil
}

// DecisionInput is one approver's verdict on a pending intake.
type DecisionInput struct {
	ApproverID   string
	ApproverName string
	Role         approval.Role
	Decision     approval.Decision
	Comments     string
	KillDate     *time.Time
	Guardrails   *approval.Guardrails
}

// RecordDecision stores a sign-off and advances the lifecycle when it
// settles the intake: a rejection rejects, needs_revision sends it back and
// the last required approval approves.
func (s *IntakeService) RecordDecision(id string, d DecisionInput) (*approval.Approval, error) {
	if !d.Decision.IsValid() {
		return nil, fmt.Errorf("unknown decision %q", d.Decision)
	}
	if d.Role == "" {
		return nil, fmt.Errorf("approver role is required")
	}
	in, err := s.GetIntake(id)
	if err != nil {
		return nil, err
	}
	if in.Status != intake.StatusPendingApproval {
		return nil, &intake.TransitionError{IntakeID: id, FromStatus: in.Status, Event: intake.EventApprove}
	}

	rec, err := s.repo.LoadRouting(id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNoRouting, id)
	}
	if err != nil {
		return nil, err
	}
	spec, err := s.repo.LoadSpec(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSpec, id)
	}
	if rec.Result.SpecHash != spec.Hash() {
		return nil, fmt.Errorf("%w: intake %s: %w", ErrApprovalRequired, id, ErrStaleRouting)
	}

	guardrails := approval.DefaultGuardrails(rec.Result.Path, effectiveClassification(spec.DataClassification))
	if d.Guardrails != nil {
		guardrails = *d.Guardrails
	}

	a := approval.Approval{
		ID:           uuid.New().String(),
		IntakeID:     id,
		ApproverID:   d.ApproverID,
		ApproverName: d.ApproverName,
		Role:         d.Role,
		Decision:     d.Decision,
		Guardrails:   guardrails,
		DecidedAt:    s.now().UTC(),
		Comments:     d.Comments,
		KillDate:     d.KillDate,
		RoutingID:    rec.ID,
	}

	approvals, err := s.repo.LoadApprovals(id)
	if err != nil {
		return nil, err
	}
	approvals = append(approvals, a)
	if err := s.repo.SaveApprovals(id, approvals); err != nil {
		return nil, fmt.Errorf("failed to save approvals: %w", err)
	}
	if err := s.audit.Log(domain.ActionApprovalRecorded, d.ApproverID, domain.IntakeRef(id), map[string]interface{}{
		"role":     string(d.Role),
		"decision": string(d.Decision),
	}); err != nil {
		return nil, err
	}

	switch d.Decision {
	case approval.DecisionRejected:
		err = s.fire(in, intake.EventReject, d.ApproverID)
	case approval.DecisionNeedsRevision:
		err = s.fire(in, intake.EventRevise, d.ApproverID)
	case approval.DecisionApproved:
		if ev, evErr := s.Evaluate(id); evErr == nil && ev.Approved() {
			err = s.fire(in, intake.EventApprove, d.ApproverID)
		}
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// QueueItem is one intake waiting for sign-off.
type QueueItem struct {
	Intake     *intake.Intake        `json:"intake"`
	Routing    *domain.RoutingRecord `json:"routing,omitempty"`
	Evaluation *approval.Evaluation  `json:"evaluation,omitempty"`
}

// Queue lists pending intakes with their routing and approval state.
func (s *IntakeService) Queue() ([]QueueItem, error) {
	pending, err := s.ListIntakes(intake.StatusPendingApproval)
	if err != nil {
		return nil, err
	}
	items := make([]QueueItem, 0, len(pending))
	for _, in := range pending {
		item := QueueItem{Intake: in}
		if rec, err := s.repo.LoadRouting(in.ID); err == nil {
			item.Routing = rec
		}
		if ev, err := s.Evaluate(in.ID); err == nil {
			item.Evaluation = ev
		}
		items = append(items, item)
	}
	return items, nil
}

// effectiveClassification mirrors the engine: unrecognized values count as
// restricted.
func effectiveClassification(c intake.DataClassification) intake.DataClassification {
	c = intake.DataClassification(strings.ToLower(strings.TrimSpace(string(c))))
	if !c.IsKnown() {
		return intake.ClassificationRestricted
	}
	return c
}
