package mcp

import (
	"encoding/json"
	"sort"

	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	mcplib "github.com/felixgeelhaar/mcp-go"
)

// OpenAPIDocument is the subset of OpenAPI 3.0 needed to describe the tools
// as POST /tools/{name} endpoints.
type OpenAPIDocument struct {
	OpenAPI    string              `json:"openapi"`
	Info       OpenAPIInfo         `json:"info"`
	Tags       []Tag               `json:"tags,omitempty"`
	Paths      map[string]PathItem `json:"paths"`
	Components Components          `json:"components"`
}

type OpenAPIInfo struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
}

type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type PathItem struct {
	Post *Operation `json:"post,omitempty"`
}

type Operation struct {
	OperationID string              `json:"operationId"`
	Summary     string              `json:"summary,omitempty"`
	RequestBody *RequestBody        `json:"requestBody,omitempty"`
	Responses   map[string]Response `json:"responses"`
	Tags        []string            `json:"tags,omitempty"`
}

type RequestBody struct {
	Required bool                 `json:"required"`
	Content  map[string]MediaType `json:"content"`
}

type MediaType struct {
	Schema any `json:"schema"`
}

type Response struct {
	Description string `json:"description"`
}

// Components carries the shared schemas; StructuredSpec is the intake
// payload JSON Schema.
type Components struct {
	Schemas map[string]json.RawMessage `json:"schemas"`
}

const specSchemaRef = "#/components/schemas/StructuredSpec"

var toolTags = map[string]string{
	"intake_route":       "routing",
	"intake_get_routing": "routing",
	"intake_policy":      "routing",
	"intake_list":        "lifecycle",
	"intake_transition":  "lifecycle",
}

var failureResponses = map[string]Response{
	"404": {Description: "Intake not found"},
	"409": {Description: "Lifecycle event not allowed in the current status"},
	"422": {Description: "Structured spec failed validation"},
}

// toolFailures lists the domain failures each tool can report.
var toolFailures = map[string][]string{
	"intake_route":       {"404", "422"},
	"intake_get_routing": {"404"},
	"intake_transition":  {"404", "409"},
}

// OpenAPI returns the OpenAPI 3.0 JSON document for this server.
func (s *Server) OpenAPI() ([]byte, error) {
	return GenerateOpenAPI(s.mcpServer)
}

// GenerateOpenAPI describes every registered tool. A "spec" argument is
// pointed at the StructuredSpec schema so clients see the real payload shape.
func GenerateOpenAPI(srv *mcplib.Server) ([]byte, error) {
	tools := srv.Tools()
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })

	paths := make(map[string]PathItem, len(tools))
	for _, t := range tools {
		op := Operation{
			OperationID: t.Name,
			Summary:     t.Description,
			Responses:   map[string]Response{"200": {Description: "Tool result"}},
			Tags:        []string{tagFor(t.Name)},
		}

		var input any = t.InputSchema
		schema, props := schemaProperties(input)
		if len(props) > 0 {
			op.RequestBody = &RequestBody{
				Required: true,
				Content: map[string]MediaType{
					"application/json": {Schema: withSpecRef(schema, props)},
				},
			}
			op.Responses["400"] = Response{Description: "Invalid arguments"}
		}
		for _, code := range toolFailures[t.Name] {
			op.Responses[code] = failureResponses[code]
		}

		paths["/tools/"+t.Name] = PathItem{Post: &op}
	}

	doc := OpenAPIDocument{
		OpenAPI: "3.0.3",
		Info: OpenAPIInfo{
			Title:       "Intake Router MCP API",
			Description: "Delivery-path routing and intake lifecycle tools.",
			Version:     SchemaVersion,
		},
		Tags: []Tag{
			{Name: "routing", Description: "Score specs and read routing decisions"},
			{Name: "lifecycle", Description: "List intakes and move them through review"},
		},
		Paths: paths,
		Components: Components{Schemas: map[string]json.RawMessage{
			"StructuredSpec": json.RawMessage(intake.SchemaJSON),
		}},
	}
	return json.MarshalIndent(doc, "", "  ")
}

func tagFor(tool string) string {
	if tag, ok := toolTags[tool]; ok {
		return tag
	}
	return "intake"
}

func schemaProperties(schema any) (map[string]any, map[string]any) {
	m, ok := schema.(map[string]any)
	if !ok {
		return nil, nil
	}
	props, _ := m["properties"].(map[string]any)
	return m, props
}

// withSpecRef returns a copy of schema whose spec property references the
// StructuredSpec component. The registered tool schema is left untouched.
func withSpecRef(schema, props map[string]any) map[string]any {
	if _, ok := props["spec"]; !ok {
		return schema
	}
	out := make(map[string]any, len(schema))
	for k, v := range schema {
		out[k] = v
	}
	p := make(map[string]any, len(props))
	for k, v := range props {
		p[k] = v
	}
	p["spec"] = map[string]any{"$ref": specSchemaRef}
	out["properties"] = p
	return out
}
