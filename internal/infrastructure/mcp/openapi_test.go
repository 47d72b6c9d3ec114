package mcp

import (
	"context"
	"encoding/json"
	"testing"

	mcplib "github.com/felixgeelhaar/mcp-go"
)

func TestGenerateOpenAPI(t *testing.T) {
	srv := mcplib.NewServer(mcplib.ServerInfo{Name: "test", Version: "0.1.0"})
	srv.Tool("test_tool").
		Description("A test tool").
		Handler(func(ctx context.Context, args struct {
			Name string `json:"name" jsonschema:"description=The name"`
		}) (string, error) {
			return "ok", nil
		})

	data, err := GenerateOpenAPI(srv)
	if err != nil {
		t.Fatalf("GenerateOpenAPI failed: %v", err)
	}

	var doc OpenAPIDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if doc.OpenAPI != "3.0.3" {
		t.Errorf("expected openapi 3.0.3, got %s", doc.OpenAPI)
	}
	if doc.Info.Title != "Intake Router MCP API" {
		t.Errorf("unexpected title: %s", doc.Info.Title)
	}

	path, ok := doc.Paths["/tools/test_tool"]
	if !ok || path.Post == nil {
		t.Fatalf("expected POST /tools/test_tool, got paths: %v", doc.Paths)
	}
	if path.Post.OperationID != "test_tool" || path.Post.Summary != "A test tool" {
		t.Errorf("unexpected operation: %+v", path.Post)
	}
	if len(path.Post.Tags) != 1 || path.Post.Tags[0] != "intake" {
		t.Errorf("unexpected tags: %v", path.Post.Tags)
	}
}

func TestGenerateOpenAPI_NoArgs(t *testing.T) {
	srv := mcplib.NewServer(mcplib.ServerInfo{Name: "test", Version: "0.1.0"})
	srv.Tool("no_args_tool").
		Description("No args").
		Handler(func(ctx context.Context, args struct{}) (string, error) {
			return "ok", nil
		})

	data, err := GenerateOpenAPI(srv)
	if err != nil {
		t.Fatalf("GenerateOpenAPI failed: %v", err)
	}
	var doc OpenAPIDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	path, ok := doc.Paths["/tools/no_args_tool"]
	if !ok || path.Post == nil {
		t.Fatal("expected POST /tools/no_args_tool")
	}
	if path.Post.RequestBody != nil {
		t.Error("expected no request body for empty args tool")
	}
}

func TestServerOpenAPIListsTools(t *testing.T) {
	s := newTestServer(t)
	data, err := s.OpenAPI()
	if err != nil {
		t.Fatalf("OpenAPI failed: %v", err)
	}
	var doc OpenAPIDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, name := range toolNames {
		if _, ok := doc.Paths["/tools/"+name]; !ok {
			t.Errorf("missing tool %s", name)
		}
	}

	route := doc.Paths["/tools/intake_route"].Post
	if route.Tags[0] != "routing" {
		t.Errorf("intake_route tags = %v", route.Tags)
	}
	for _, code := range []string{"200", "404", "422"} {
		if _, ok := route.Responses[code]; !ok {
			t.Errorf("intake_route missing response %s", code)
		}
	}
	if _, ok := doc.Paths["/tools/intake_list"].Post.Responses["404"]; ok {
		t.Error("intake_list takes no intake_id")
	}
	if len(doc.Components.Schemas["StructuredSpec"]) == 0 {
		t.Fatal("missing StructuredSpec component")
	}

	var raw struct {
		Paths map[string]struct {
			Post struct {
				RequestBody struct {
					Content map[string]struct {
						Schema struct {
							Properties map[string]map[string]any `json:"properties"`
						} `json:"schema"`
					} `json:"content"`
				} `json:"requestBody"`
			} `json:"post"`
		} `json:"paths"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if body, ok := raw.Paths["/tools/intake_route"].Post.RequestBody.Content["application/json"]; ok {
		if spec := body.Schema.Properties["spec"]; spec["$ref"] != specSchemaRef {
			t.Errorf("spec property = %v, want a reference to the StructuredSpec schema", spec)
		}
	}
	if _, ok := doc.Paths["/tools/intake_transition"].Post.Responses["409"]; !ok {
		t.Error("intake_transition should document the lifecycle conflict")
	}
}
