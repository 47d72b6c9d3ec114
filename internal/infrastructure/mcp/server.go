package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/intakerouter/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/intakerouter/pkg/application"
	"github.com/felixgeelhaar/intakerouter/pkg/domain"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
	"github.com/felixgeelhaar/mcp-go"
)

type Server struct {
	mcpServer  *mcp.Server
	intakeSvc  *application.IntakeService
	routingSvc *application.RoutingService
	policySvc  *application.PolicyService
}

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// mcpErr returns a user-friendly error for MCP clients.
func mcpErr(friendly string) error {
	return fmt.Errorf("%s", friendly)
}

// NewServer builds the services of the workspace at root and registers the tools.
func NewServer(root string) (*Server, error) {
	services, err := wiring.BuildAppServices(root)
	if services == nil {
		return nil, fmt.Errorf("build services: %w", err)
	}
	return NewServerWithServices(services), nil
}

// NewServerWithServices registers the tools against already wired services.
func NewServerWithServices(services *wiring.AppServices) *Server {
	info := mcp.ServerInfo{
		Name:    "intakerouter",
		Version: Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("Intake Router MCP Server"),
			mcp.WithDescription("Scores intake specs and recommends a delivery path: BUY, CONFIG, AI_DISPOSABLE, PRODUCT_GRADE or CRITICAL."),
			mcp.WithWebsiteURL("https://github.com/felixgeelhaar/intakerouter"),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Use intake_route to score a structured spec, intake_list and intake_get_routing to inspect stored intakes, and intake_transition to move an intake through review."),
		),
		intakeSvc:  services.Intakes,
		routingSvc: services.Routing,
		policySvc:  services.Policy,
	}

	s.registerTools()
	s.registerSchemaResource()
	return s
}

// FlexInt accepts both integer and string JSON values.
// MCP clients sometimes send numbers as strings.
type FlexInt int

func (fi *FlexInt) UnmarshalJSON(data []byte) error {
	var i int
	if err := json.Unmarshal(data, &i); err == nil {
		*fi = FlexInt(i)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		var n int
		if _, err := fmt.Sscanf(s, "%d", &n); err == nil {
			*fi = FlexInt(n)
			return nil
		}
	}
	return fmt.Errorf("expected integer or string, got %s", string(data))
}

type RouteArgs struct {
	Spec         map[string]any `json:"spec,omitempty" jsonschema:"description=Structured spec to score (problemStatement, goals, targetUsers, dataClassification, integrations, ...)"`
	IntakeID     string         `json:"intake_id,omitempty" jsonschema:"description=Route the stored spec of this intake and record the decision instead"`
	TimeToMarket *FlexInt       `json:"time_to_market,omitempty" jsonschema:"description=Override the time-to-market factor (0-100)"`
	Actor        string         `json:"actor,omitempty" jsonschema:"description=Who is routing, for the audit trail"`
}

type IntakeArgs struct {
	IntakeID string `json:"intake_id" jsonschema:"required,description=The intake ID"`
}

type ListArgs struct {
	Status string `json:"status,omitempty" jsonschema:"description=Only list intakes in this status (draft, pending_approval, approved, ...)"`
}

type TransitionArgs struct {
	IntakeID string `json:"intake_id" jsonschema:"required,description=The intake ID"`
	Event    string `json:"event" jsonschema:"required,description=The lifecycle event (gather, generate_spec, submit, approve, reject, revise, export, close)"`
	Actor    string `json:"actor,omitempty" jsonschema:"description=Who is transitioning, for the audit trail"`
}

func (s *Server) registerTools() {
	// Tool: intake_route
	s.mcpServer.Tool("intake_route").
		Description("Score a structured spec across seven factors and recommend a delivery path with an explanation").
		Handler(s.handleRoute)

	// Tool: intake_get_routing
	s.mcpServer.Tool("intake_get_routing").
		Description("Retrieve the stored routing decision of an intake and whether its spec changed since").
		Handler(s.handleGetRouting)

	// Tool: intake_list
	s.mcpServer.Tool("intake_list").
		Description("List intakes, optionally filtered by status").
		Handler(s.handleList)

	// Tool: intake_transition
	s.mcpServer.Tool("intake_transition").
		Description("Move an intake through its lifecycle (approve is subject to the approval policy)").
		Handler(s.handleTransition)

	// Tool: intake_policy
	s.mcpServer.Tool("intake_policy").
		Description("Retrieve the active routing and approval policy").
		Handler(s.handlePolicy)
}

func actorOr(actor string) string {
	if a := strings.TrimSpace(actor); a != "" {
		return a
	}
	return "mcp"
}

func (s *Server) handleRoute(ctx context.Context, args RouteArgs) (any, error) {
	var opts []routing.RouteOption
	if args.TimeToMarket != nil {
		opts = append(opts, routing.WithTimeToMarket(int(*args.TimeToMarket)))
	}

	if args.IntakeID != "" {
		if args.Spec != nil {
			spec, err := decodeSpec(args.Spec)
			if err != nil {
				return nil, friendly(err)
			}
			if err := s.routingSvc.SaveSpec(args.IntakeID, spec, actorOr(args.Actor)); err != nil {
				return nil, friendly(err)
			}
		}
		rec, err := s.routingSvc.RouteIntake(ctx, args.IntakeID, actorOr(args.Actor), opts...)
		if err != nil {
			return nil, friendly(err)
		}
		return rec, nil
	}

	if args.Spec == nil {
		return nil, mcpErr("Provide a spec to score or the intake_id of a stored intake.")
	}
	spec, err := decodeSpec(args.Spec)
	if err != nil {
		return nil, friendly(err)
	}
	res, err := s.routingSvc.RouteSpec(spec, opts...)
	if err != nil {
		return nil, friendly(err)
	}
	return res, nil
}

func decodeSpec(raw map[string]any) (*intake.StructuredSpec, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return intake.DecodeJSON(data)
}

func (s *Server) handleGetRouting(ctx context.Context, args IntakeArgs) (any, error) {
	status, err := s.routingSvc.GetRouting(args.IntakeID)
	if err != nil {
		return nil, friendly(err)
	}
	return status, nil
}

func (s *Server) handleList(ctx context.Context, args ListArgs) (any, error) {
	var status intake.Status
	if args.Status != "" {
		parsed, err := intake.ParseStatus(args.Status)
		if err != nil {
			return nil, mcpErr(fmt.Sprintf("Unknown status %q.", args.Status))
		}
		status = parsed
	}
	list, err := s.intakeSvc.ListIntakes(status)
	if err != nil {
		return nil, friendly(err)
	}
	if list == nil {
		list = []*intake.Intake{}
	}
	return list, nil
}

func (s *Server) handleTransition(ctx context.Context, args TransitionArgs) (string, error) {
	in, err := s.intakeSvc.Transition(args.IntakeID, args.Event, actorOr(args.Actor))
	if err != nil {
		return "", friendly(err)
	}
	return fmt.Sprintf("Intake %s is now %s", in.ID, in.Status), nil
}

func (s *Server) handlePolicy(ctx context.Context, args struct{}) (any, error) {
	return s.policySvc.Policy(), nil
}

// friendly turns service errors into messages an MCP client can act on.
// Unexpected errors are not passed through.
func friendly(err error) error {
	var specErr *intake.InvalidSpecError
	switch {
	case errors.As(err, &specErr):
		return mcpErr(specErr.Error())
	case errors.Is(err, routing.ErrUnknownClassification):
		return mcpErr("The spec uses a data classification the policy does not accept (use public, internal, confidential or restricted).")
	case errors.Is(err, application.ErrIntakeNotFound), errors.Is(err, domain.ErrNotFound):
		return mcpErr("Intake not found.")
	case errors.Is(err, application.ErrNoSpec):
		return mcpErr("The intake has no structured spec yet.")
	case errors.Is(err, application.ErrNoRouting):
		return mcpErr("The intake has not been routed yet. Call intake_route with its intake_id.")
	case errors.Is(err, application.ErrApprovalRequired), errors.Is(err, application.ErrIntakeLocked):
		return mcpErr(err.Error())
	case errors.Is(err, intake.ErrInvalidTransition):
		return mcpErr(err.Error())
	case errors.Is(err, application.ErrNotInitialized):
		return mcpErr("The workspace is not initialized. Run 'intakerouter init' first.")
	}
	return mcpErr("The request could not be completed.")
}

// ServeStdio serves MCP over stdin/stdout until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}
