package application

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/intakerouter/pkg/domain"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
)

// ExportService hands approved intakes to a delivery tracker.
type ExportService struct {
	intakes  *IntakeService
	routing  *RoutingService
	exporter domain.Exporter
	audit    domain.AuditLogger
}

func NewExportService(intakes *IntakeService, routing *RoutingService, exporter domain.Exporter, audit domain.AuditLogger) *ExportService {
	return &ExportService{intakes: intakes, routing: routing, exporter: exporter, audit: audit}
}

// Export pushes an approved intake and marks it exported. Items the tracker
// rejected are reported in the receipt; the intake still moves on.
func (s *ExportService) Export(ctx context.Context, id, actor string) (*domain.ExportReceipt, error) {
	if s.exporter == nil {
		return nil, fmt.Errorf("no exporter configured")
	}
	in, err := s.intakes.GetIntake(id)
	if err != nil {
		return nil, err
	}
	if in.Status != intake.StatusApproved {
		return nil, &intake.TransitionError{IntakeID: id, FromStatus: in.Status, Event: intake.EventExport}
	}

	status, err := s.routing.GetRouting(id)
	if err != nil {
		return nil, err
	}
	if status.Stale {
		return nil, fmt.Errorf("routing of intake %s is stale: the spec changed after it was routed", id)
	}
	spec, err := s.routing.loadSpec(id)
	if err != nil {
		return nil, err
	}

	receipt, err := s.exporter.Export(ctx, domain.ExportBundle{Intake: in, Spec: spec, Routing: status.Record})
	if err != nil {
		return nil, fmt.Errorf("export failed: %w", err)
	}

	if _, err := s.intakes.Transition(id, intake.EventExport, actor); err != nil {
		return receipt, err
	}
	if err := s.audit.Log(domain.ActionIntakeExported, actor, domain.IntakeRef(id), map[string]interface{}{
		"epic_key": receipt.EpicKey,
		"stories":  len(receipt.StoryKeys),
		"failures": len(receipt.Failures),
	}); err != nil {
		return receipt, err
	}
	return receipt, nil
}
