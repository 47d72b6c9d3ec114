package sdk

import (
	"encoding/json"

	"github.com/felixgeelhaar/intakerouter/pkg/application"
	"github.com/felixgeelhaar/intakerouter/pkg/domain"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
)

// Tool results decode into the same types the server produces.
type (
	RoutingResult = routing.Result
	RoutingRecord = domain.RoutingRecord
	RoutingStatus = application.RoutingStatus
	Intake        = intake.Intake
	Policy        = domain.PolicyConfig
)

// RouteRequest provides typed parameters for the intake_route tool. Set Spec
// to score a spec without storing anything, or IntakeID to route the stored
// spec of an intake (replacing it first when Spec is also set).
type RouteRequest struct {
	Spec         *intake.StructuredSpec
	IntakeID     string
	TimeToMarket *int
	Actor        string
}

// SupportedSchemaMajor is the tool schema major version this client speaks.
const SupportedSchemaMajor = "1"

// SchemaInfo is the intake://schema resource.
type SchemaInfo struct {
	SchemaVersion   string                      `json:"schema_version"`
	ServerVersion   string                      `json:"server_version"`
	Tools           []string                    `json:"tools"`
	DeliveryPaths   []PathInfo                  `json:"delivery_paths"`
	Classifications []intake.DataClassification `json:"classifications"`
	Statuses        []intake.Status             `json:"statuses"`
	SpecSchema      json.RawMessage             `json:"spec_schema"`
}

// PathInfo pairs a delivery path with its display label.
type PathInfo struct {
	Path  routing.DeliveryPath `json:"path"`
	Label string               `json:"label"`
}
