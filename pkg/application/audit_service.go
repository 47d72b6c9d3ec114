package application

import (
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/intakerouter/pkg/domain"
	"github.com/google/uuid"
)

// AuditService appends hash-chained events to the workspace audit trail.
type AuditService struct {
	repo domain.AuditRepository
	mu   sync.Mutex
	now  func() time.Time
}

var _ domain.AuditLogger = (*AuditService)(nil)

func NewAuditService(repo domain.AuditRepository) *AuditService {
	return &AuditService{repo: repo, now: time.Now}
}

// Log records one event chained to the newest event on disk. The trail is
// re-read on every call because the CLI and a running server may both append.
func (s *AuditService) Log(action string, actor string, entity domain.EntityRef, metadata map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.repo.LoadEvents()
	if err != nil {
		return fmt.Errorf("audit: load trail: %w", err)
	}
	event := domain.Event{
		ID:         uuid.New().String(),
		Timestamp:  s.now().UTC(),
		Action:     action,
		Actor:      actor,
		EntityType: entity.Type,
		EntityID:   entity.ID,
		Metadata:   metadata,
	}
	if n := len(events); n > 0 {
		event.PrevHash = events[n-1].Hash
	}
	event.Hash = event.CalculateHash()

	if err := s.repo.RecordEvent(event); err != nil {
		return fmt.Errorf("audit: record %s: %w", action, err)
	}
	return nil
}

func (s *AuditService) GetTimeline() ([]domain.Event, error) {
	return s.repo.LoadEvents()
}

// EntityTimeline returns the events recorded against one entity, oldest first.
func (s *AuditService) EntityTimeline(entity domain.EntityRef) ([]domain.Event, error) {
	events, err := s.repo.LoadEvents()
	if err != nil {
		return nil, err
	}
	var out []domain.Event
	for _, e := range events {
		if e.EntityType == entity.Type && e.EntityID == entity.ID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ViolationKind names how an audit event fails verification.
type ViolationKind string

const (
	// ViolationBrokenLink means the event does not point at its predecessor:
	// an event was removed, inserted or reordered.
	ViolationBrokenLink ViolationKind = "broken_link"
	// ViolationContentChanged means the event no longer matches its own hash.
	ViolationContentChanged ViolationKind = "content_changed"
)

// IntegrityViolation is one failed check of the audit hash chain.
type IntegrityViolation struct {
	Index   int           `json:"index"`
	EventID string        `json:"event_id"`
	Kind    ViolationKind `json:"kind"`
}

func (v IntegrityViolation) String() string {
	switch v.Kind {
	case ViolationBrokenLink:
		return fmt.Sprintf("event %d (%s) does not follow the previous event; the trail was cut or reordered", v.Index, v.EventID)
	case ViolationContentChanged:
		return fmt.Sprintf("event %d (%s) was modified after it was recorded", v.Index, v.EventID)
	}
	return fmt.Sprintf("event %d (%s): %s", v.Index, v.EventID, v.Kind)
}

// VerifyIntegrity walks the chain and reports every broken link and every
// event whose content no longer matches its hash.
func (s *AuditService) VerifyIntegrity() ([]IntegrityViolation, error) {
	events, err := s.repo.LoadEvents()
	if err != nil {
		return nil, err
	}

	var violations []IntegrityViolation
	prev := ""
	for i, e := range events {
		if e.PrevHash != prev {
			violations = append(violations, IntegrityViolation{Index: i, EventID: e.ID, Kind: ViolationBrokenLink})
		}
		if e.Hash != e.CalculateHash() {
			violations = append(violations, IntegrityViolation{Index: i, EventID: e.ID, Kind: ViolationContentChanged})
		}
		prev = e.Hash
	}
	return violations, nil
}
