package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/mcp-go/client"
)

// Client is a typed Go client for the intakerouter MCP server.
type Client struct {
	mcp      *client.Client
	retryCfg retry.Config
	timeout  time.Duration
	actor    string
}

// NewClient creates a new SDK client wrapping the given MCP transport.
func NewClient(transport client.Transport, opts ...Option) *Client {
	cfg := newConfig(opts)
	return &Client{
		mcp:     client.New(transport, client.WithTimeout(cfg.callTimeout)),
		timeout: cfg.callTimeout,
		actor:   cfg.actor,
		retryCfg: retry.Config{
			MaxAttempts:   cfg.attempts,
			InitialDelay:  cfg.backoff,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Initialize performs the MCP initialize handshake.
func (c *Client) Initialize(ctx context.Context) (*client.ServerInfo, error) {
	return c.mcp.Initialize(ctx)
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return c.mcp.Close()
}

// call invokes a tool with retry.
func (c *Client) call(ctx context.Context, tool string, args map[string]any) (*client.ToolResult, error) {
	r := retry.New[*client.ToolResult](c.retryCfg)
	result, err := r.Do(ctx, func(ctx context.Context) (*client.ToolResult, error) {
		return c.mcp.CallTool(ctx, tool, args)
	})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", tool, err)
	}
	if result.IsError {
		msg := ""
		if len(result.Content) > 0 {
			msg = result.Content[0].Text
		}
		return nil, &ToolError{Tool: tool, Message: msg}
	}
	return result, nil
}

// unmarshalText extracts Content[0].Text from a tool result and unmarshals it as JSON.
func unmarshalText[T any](result *client.ToolResult) (*T, error) {
	text, err := textResult(result)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return &v, nil
}

// textResult extracts Content[0].Text from a tool result.
func textResult(result *client.ToolResult) (string, error) {
	if len(result.Content) == 0 {
		return "", ErrNoContent
	}
	return result.Content[0].Text, nil
}

// --- Schema ---

// GetSchema reads the intake://schema resource from the server.
func (c *Client) GetSchema(ctx context.Context) (*SchemaInfo, error) {
	rc, err := c.mcp.ReadResource(ctx, "intake://schema")
	if err != nil {
		return nil, fmt.Errorf("read schema resource: %w", err)
	}
	var info SchemaInfo
	if err := json.Unmarshal([]byte(rc.Text), &info); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	return &info, nil
}

// Compatible checks if the server schema is compatible with this SDK version.
// Returns nil if compatible, error with details if not.
func (c *Client) Compatible(ctx context.Context) error {
	info, err := c.GetSchema(ctx)
	if err != nil {
		return fmt.Errorf("check compatibility: %w", err)
	}
	serverMajor := majorVersion(info.SchemaVersion)
	if serverMajor != SupportedSchemaMajor {
		return fmt.Errorf("incompatible schema: server=%s (major %s), sdk supports major %s",
			info.SchemaVersion, serverMajor, SupportedSchemaMajor)
	}
	return nil
}

// majorVersion extracts the major version from a semver string.
func majorVersion(v string) string {
	for i, ch := range v {
		if ch == '.' {
			return v[:i]
		}
	}
	return v
}

// --- Routing ---

// Route scores a spec, or routes the stored spec of an intake. Stateless
// calls return a RoutingResult in Record.Result with an empty record ID.
func (c *Client) Route(ctx context.Context, req RouteRequest) (*RoutingRecord, error) {
	if req.Actor == "" {
		req.Actor = c.actor
	}
	args, err := req.args()
	if err != nil {
		return nil, err
	}
	res, err := c.call(ctx, "intake_route", args)
	if err != nil {
		return nil, err
	}
	if req.IntakeID != "" {
		return unmarshalText[RoutingRecord](res)
	}
	result, err := unmarshalText[RoutingResult](res)
	if err != nil {
		return nil, err
	}
	return &RoutingRecord{Result: *result}, nil
}

func (r RouteRequest) args() (map[string]any, error) {
	args := map[string]any{}
	if r.Spec != nil {
		data, err := json.Marshal(r.Spec)
		if err != nil {
			return nil, fmt.Errorf("marshal spec: %w", err)
		}
		var spec map[string]any
		if err := json.Unmarshal(data, &spec); err != nil {
			return nil, fmt.Errorf("marshal spec: %w", err)
		}
		args["spec"] = spec
	}
	if r.IntakeID != "" {
		args["intake_id"] = r.IntakeID
	}
	if r.TimeToMarket != nil {
		args["time_to_market"] = *r.TimeToMarket
	}
	if r.Actor != "" {
		args["actor"] = r.Actor
	}
	return args, nil
}

// GetRouting returns the stored routing of an intake and whether it is stale.
func (c *Client) GetRouting(ctx context.Context, intakeID string) (*RoutingStatus, error) {
	res, err := c.call(ctx, "intake_get_routing", map[string]any{"intake_id": intakeID})
	if err != nil {
		return nil, err
	}
	return unmarshalText[RoutingStatus](res)
}

// --- Intakes ---

// ListIntakes lists intakes, filtered by status when status is non-empty.
func (c *Client) ListIntakes(ctx context.Context, status string) ([]Intake, error) {
	args := map[string]any{}
	if status != "" {
		args["status"] = status
	}
	res, err := c.call(ctx, "intake_list", args)
	if err != nil {
		return nil, err
	}
	list, err := unmarshalText[[]Intake](res)
	if err != nil {
		return nil, err
	}
	return *list, nil
}

// Transition fires a lifecycle event on an intake. An empty actor falls back
// to the client's actor.
func (c *Client) Transition(ctx context.Context, intakeID, event, actor string) (string, error) {
	if actor == "" {
		actor = c.actor
	}
	args := map[string]any{"intake_id": intakeID, "event": event, "actor": actor}
	res, err := c.call(ctx, "intake_transition", args)
	if err != nil {
		return "", err
	}
	return textResult(res)
}

// --- Policy ---

// GetPolicy returns the active routing and approval policy.
func (c *Client) GetPolicy(ctx context.Context) (*Policy, error) {
	res, err := c.call(ctx, "intake_policy", nil)
	if err != nil {
		return nil, err
	}
	return unmarshalText[Policy](res)
}
