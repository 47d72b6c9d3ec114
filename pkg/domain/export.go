package domain

import (
	"context"

	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
)

// ExportBundle is everything an exporter needs to create delivery tickets.
type ExportBundle struct {
	Intake  *intake.Intake
	Spec    *intake.StructuredSpec
	Routing *RoutingRecord
}

// ExportReceipt describes what an exporter created. Failures lists the
// items that could not be created; the export itself still counts.
type ExportReceipt struct {
	EpicKey   string   `json:"epic_key"`
	EpicURL   string   `json:"epic_url,omitempty"`
	StoryKeys []string `json:"story_keys"`
	Failures  []string `json:"failures,omitempty"`
}

// Exporter pushes an approved intake into a delivery tracker.
type Exporter interface {
	Export(ctx context.Context, bundle ExportBundle) (*ExportReceipt, error)
}
