package mcp

import (
	"context"
	"encoding/json"

	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
	mcplib "github.com/felixgeelhaar/mcp-go"
)

// SchemaVersion is the semver of the tool surface. Bump the major version
// when a tool argument or result changes incompatibly.
const SchemaVersion = "1.0.0"

const schemaURI = "intake://schema"

// toolNames lists the registered tools in registration order.
var toolNames = []string{
	"intake_route",
	"intake_get_routing",
	"intake_list",
	"intake_transition",
	"intake_policy",
}

type pathInfo struct {
	Path  routing.DeliveryPath `json:"path"`
	Label string               `json:"label"`
}

type schemaDocument struct {
	SchemaVersion   string                      `json:"schema_version"`
	ServerVersion   string                      `json:"server_version"`
	Tools           []string                    `json:"tools"`
	DeliveryPaths   []pathInfo                  `json:"delivery_paths"`
	Classifications []intake.DataClassification `json:"classifications"`
	Statuses        []intake.Status             `json:"statuses"`
	SpecSchema      json.RawMessage             `json:"spec_schema"`
}

func buildSchemaDocument() schemaDocument {
	paths := routing.AllPaths()
	infos := make([]pathInfo, len(paths))
	for i, p := range paths {
		infos[i] = pathInfo{Path: p, Label: p.Label()}
	}
	return schemaDocument{
		SchemaVersion:   SchemaVersion,
		ServerVersion:   Version,
		Tools:           toolNames,
		DeliveryPaths:   infos,
		Classifications: intake.AllClassifications(),
		Statuses:        intake.AllStatuses(),
		SpecSchema:      json.RawMessage(intake.SchemaJSON),
	}
}

// registerSchemaResource publishes the tool surface and the structured spec
// JSON Schema so clients can validate before calling intake_route.
func (s *Server) registerSchemaResource() {
	s.mcpServer.Resource(schemaURI).
		Name(schemaURI).
		Description("Tool schema version, delivery paths, lifecycle statuses and the structured spec JSON Schema").
		MimeType("application/json").
		Handler(func(_ context.Context, _ string, _ map[string]string) (*mcplib.ResourceContent, error) {
			data, err := json.Marshal(buildSchemaDocument())
			if err != nil {
				return nil, err
			}
			return &mcplib.ResourceContent{
				URI:      schemaURI,
				MimeType: "application/json",
				Text:     string(data),
			}, nil
		})
}
