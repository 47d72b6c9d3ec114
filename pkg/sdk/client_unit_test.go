package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
	"github.com/felixgeelhaar/mcp-go/protocol"
)

// mockTransport implements client.Transport and returns canned responses
// based on the method name in the request.
type mockTransport struct {
	closed    bool
	responses map[string]any // method -> result for Response
	lastCall  toolCall
}

type toolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		responses: make(map[string]any),
	}
}

// setToolResponse configures a mock response for a tools/call request.
func (m *mockTransport) setToolResponse(text string, isError bool) {
	content := []any{
		map[string]any{"type": "text", "text": text},
	}
	result := map[string]any{"content": content}
	if isError {
		result["isError"] = true
	}
	m.responses["tools/call"] = result
}

// setResourceResponse configures a mock response for resources/read.
func (m *mockTransport) setResourceResponse(text string) {
	m.responses["resources/read"] = map[string]any{
		"contents": []any{
			map[string]any{"uri": "intake://schema", "text": text},
		},
	}
}

func (m *mockTransport) Send(_ context.Context, req *protocol.Request) (*protocol.Response, error) {
	if req.Method == "tools/call" {
		if raw, err := json.Marshal(req.Params); err == nil {
			m.lastCall = toolCall{}
			_ = json.Unmarshal(raw, &m.lastCall)
		}
	}
	result, ok := m.responses[req.Method]
	if !ok {
		if req.Method == "initialize" {
			return protocol.NewResponse(req.ID, map[string]any{
				"serverInfo":      map[string]any{"name": "mock", "version": "1.0.0"},
				"protocolVersion": "2024-11-05",
				"capabilities":    map[string]any{"tools": map[string]any{}},
			}), nil
		}
		if req.IsNotification() {
			return nil, nil
		}
		return protocol.NewResponse(req.ID, map[string]any{
			"content": []any{map[string]any{"type": "text", "text": "ok"}},
		}), nil
	}
	return protocol.NewResponse(req.ID, result), nil
}

func (m *mockTransport) Close() error {
	m.closed = true
	return nil
}

// helper to create an initialized client
func newTestClient(t *testing.T, mt *mockTransport) *Client {
	t.Helper()
	c := NewClient(mt, WithRetry(1, time.Millisecond))
	if _, err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return c
}

// --- Routing ---

func TestClient_RouteSpec(t *testing.T) {
	mt := newMockTransport()
	mt.setToolResponse(`{"path":"BUY","score":26,"breakdown":{"timeToMarket":50},"explanation":"## Routing Recommendation: Buy","rule":"buy","reasons":["standard"],"specHash":"abc"}`, false)
	c := newTestClient(t, mt)

	ttm := 70
	rec, err := c.Route(context.Background(), RouteRequest{
		Spec:         &intake.StructuredSpec{ProblemStatement: "Track contracts", DataClassification: intake.ClassificationInternal},
		TimeToMarket: &ttm,
	})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if rec.ID != "" {
		t.Errorf("stateless routing should not carry a record ID, got %q", rec.ID)
	}
	if rec.Result.Path != routing.PathBuy || rec.Result.Score != 26 {
		t.Errorf("unexpected result: %+v", rec.Result)
	}

	if mt.lastCall.Name != "intake_route" {
		t.Errorf("called %q", mt.lastCall.Name)
	}
	spec, ok := mt.lastCall.Arguments["spec"].(map[string]any)
	if !ok || spec["dataClassification"] != "internal" {
		t.Errorf("spec argument = %#v", mt.lastCall.Arguments["spec"])
	}
	if mt.lastCall.Arguments["time_to_market"] != float64(70) {
		t.Errorf("time_to_market = %#v", mt.lastCall.Arguments["time_to_market"])
	}
	if _, ok := mt.lastCall.Arguments["intake_id"]; ok {
		t.Error("intake_id should be omitted")
	}
}

func TestClient_RouteIntake(t *testing.T) {
	mt := newMockTransport()
	mt.setToolResponse(`{"id":"r-1","intake_id":"in-1","result":{"path":"CRITICAL","score":71},"routed_at":"2026-01-02T03:04:05Z","routed_by":"alice"}`, false)
	c := newTestClient(t, mt)

	rec, err := c.Route(context.Background(), RouteRequest{IntakeID: "in-1", Actor: "alice"})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if rec.ID != "r-1" || rec.IntakeID != "in-1" || rec.Result.Path != routing.PathCritical {
		t.Errorf("unexpected record: %+v", rec)
	}
	if mt.lastCall.Arguments["actor"] != "alice" {
		t.Errorf("actor = %#v", mt.lastCall.Arguments["actor"])
	}
}

func TestClient_GetRouting(t *testing.T) {
	mt := newMockTransport()
	mt.setToolResponse(`{"record":{"id":"r-1","intake_id":"in-1","result":{"path":"CONFIG","score":40}},"current_spec_hash":"new","stale":true}`, false)
	c := newTestClient(t, mt)

	status, err := c.GetRouting(context.Background(), "in-1")
	if err != nil {
		t.Fatalf("GetRouting: %v", err)
	}
	if !status.Stale || status.Record.Result.Path != routing.PathConfig {
		t.Errorf("unexpected status: %+v", status)
	}
	if mt.lastCall.Arguments["intake_id"] != "in-1" {
		t.Errorf("intake_id = %#v", mt.lastCall.Arguments["intake_id"])
	}
}

// --- Intakes ---

func TestClient_ListIntakes(t *testing.T) {
	mt := newMockTransport()
	mt.setToolResponse(`[{"id":"in-1","title":"Contracts","status":"pending_approval"},{"id":"in-2","title":"Portal","status":"pending_approval"}]`, false)
	c := newTestClient(t, mt)

	list, err := c.ListIntakes(context.Background(), "pending_approval")
	if err != nil {
		t.Fatalf("ListIntakes: %v", err)
	}
	if len(list) != 2 || list[1].Status != intake.StatusPendingApproval {
		t.Errorf("unexpected list: %+v", list)
	}
	if mt.lastCall.Arguments["status"] != "pending_approval" {
		t.Errorf("status = %#v", mt.lastCall.Arguments["status"])
	}
}

func TestClient_Transition(t *testing.T) {
	mt := newMockTransport()
	mt.setToolResponse("Intake in-1 is now pending_approval", false)
	c := newTestClient(t, mt)

	msg, err := c.Transition(context.Background(), "in-1", "submit", "")
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if msg != "Intake in-1 is now pending_approval" {
		t.Errorf("got %q", msg)
	}
	if got := mt.lastCall.Arguments["actor"]; got != DefaultActor {
		t.Errorf("empty actor should fall back to %q, got %v", DefaultActor, got)
	}
}

func TestClient_GetPolicy(t *testing.T) {
	mt := newMockTransport()
	mt.setToolResponse(`{"routing":{"unknown_classification":"reject"},"block_restricted_disposable":true,"require_kill_date":false}`, false)
	c := newTestClient(t, mt)

	pol, err := c.GetPolicy(context.Background())
	if err != nil {
		t.Fatalf("GetPolicy: %v", err)
	}
	if !pol.BlockRestrictedDisposable || pol.RequireKillDate {
		t.Errorf("unexpected policy: %+v", pol)
	}
}

// --- Error path ---

func TestClient_ToolError(t *testing.T) {
	mt := newMockTransport()
	mt.setToolResponse("Intake not found.", true)
	c := newTestClient(t, mt)

	_, err := c.GetRouting(context.Background(), "in-missing")
	if err == nil {
		t.Fatal("expected error for IsError response")
	}
	toolErr, ok := err.(*ToolError)
	if !ok {
		t.Fatalf("expected ToolError, got %T: %v", err, err)
	}
	if toolErr.Tool != "intake_get_routing" || toolErr.Message != "Intake not found." {
		t.Errorf("unexpected tool error: %+v", toolErr)
	}
	if !errors.Is(err, ErrIntakeNotFound) {
		t.Error("tool error should match ErrIntakeNotFound")
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	mt := newMockTransport()
	mt.setToolResponse("not json", false)
	c := newTestClient(t, mt)

	if _, err := c.GetPolicy(context.Background()); err == nil {
		t.Fatal("expected an unmarshal error")
	}
}

// --- Schema / Compatible ---

func TestClient_GetSchema(t *testing.T) {
	mt := newMockTransport()
	mt.setResourceResponse(`{"schema_version":"1.2.0","server_version":"0.9.0","tools":["intake_route"],"delivery_paths":[{"path":"BUY","label":"Buy (Commercial Off-the-Shelf)"}],"spec_schema":{"type":"object"}}`)
	c := newTestClient(t, mt)

	schema, err := c.GetSchema(context.Background())
	if err != nil {
		t.Fatalf("GetSchema: %v", err)
	}
	if schema.SchemaVersion != "1.2.0" {
		t.Errorf("got version %q, want %q", schema.SchemaVersion, "1.2.0")
	}
	if len(schema.DeliveryPaths) != 1 || schema.DeliveryPaths[0].Path != routing.PathBuy {
		t.Errorf("delivery paths = %+v", schema.DeliveryPaths)
	}
	if len(schema.SpecSchema) == 0 {
		t.Error("spec schema should be kept raw")
	}
}

func TestClient_Compatible(t *testing.T) {
	tests := []struct {
		version string
		wantErr bool
	}{
		{"1.2.0", false},
		{"2.0.0", true},
	}
	for _, tt := range tests {
		mt := newMockTransport()
		mt.setResourceResponse(`{"schema_version":"` + tt.version + `","server_version":"0.9.0"}`)
		c := newTestClient(t, mt)

		err := c.Compatible(context.Background())
		if (err != nil) != tt.wantErr {
			t.Errorf("Compatible(%s) err = %v, wantErr %v", tt.version, err, tt.wantErr)
		}
	}
}

// --- Close / Options ---

func TestClient_Close(t *testing.T) {
	mt := newMockTransport()
	c := NewClient(mt)
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !mt.closed {
		t.Error("expected transport to be closed")
	}
}

func TestNewClient_Options(t *testing.T) {
	mt := newMockTransport()
	if c := NewClient(mt); c.timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", c.timeout)
	}
	if c := NewClient(mt, WithTimeout(60*time.Second)); c.timeout != 60*time.Second {
		t.Errorf("expected timeout 60s, got %v", c.timeout)
	}
	if c := NewClient(mt, WithRetry(5, 100*time.Millisecond)); c.retryCfg.MaxAttempts != 5 {
		t.Errorf("expected max attempts 5, got %d", c.retryCfg.MaxAttempts)
	}
	if c := NewClient(mt); c.actor != DefaultActor {
		t.Errorf("expected default actor %q, got %q", DefaultActor, c.actor)
	}
	if c := NewClient(mt, WithActor("portal")); c.actor != "portal" {
		t.Errorf("expected actor portal, got %q", c.actor)
	}
	if c := NewClient(mt, WithActor("")); c.actor != DefaultActor {
		t.Error("an empty actor keeps the default")
	}
}

func TestErrNoContent_Message(t *testing.T) {
	if ErrNoContent.Error() != "intakerouter: empty tool result" {
		t.Errorf("unexpected: %s", ErrNoContent.Error())
	}
}
