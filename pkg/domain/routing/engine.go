package routing

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
)

// Result is the routing decision for one spec version. It is never patched;
// a changed spec gets a fresh Route call.
type Result struct {
	Path        DeliveryPath   `json:"path"`
	Score       int            `json:"score"`
	Breakdown   ScoreBreakdown `json:"breakdown"`
	Explanation string         `json:"explanation"`
	Rule        string         `json:"rule"`
	Reasons     []string       `json:"reasons"`
	Warnings    []string       `json:"warnings,omitempty"`
	SpecHash    string         `json:"specHash"`
}

// Engine routes structured specs with a fixed configuration. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine validates cfg and returns an engine bound to a private copy of it.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg.Clone()}, nil
}

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg.Clone()
}

type routeOptions struct {
	timeToMarket *int
}

// RouteOption customizes a single Route call.
type RouteOption func(*routeOptions)

// WithTimeToMarket overrides the urgency factor for this call.
func WithTimeToMarket(n int) RouteOption {
	return func(o *routeOptions) {
		o.timeToMarket = &n
	}
}

// Route scores, classifies and explains spec. The only hard failures are a
// missing classification and, under PolicyReject, an unknown one.
func (e *Engine) Route(spec *intake.StructuredSpec, opts ...RouteOption) (*Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	var o routeOptions
	for _, opt := range opts {
		opt(&o)
	}

	// Score a normalized copy so the caller's spec is never touched.
	scored := spec.Normalized()

	var warnings []string
	classification := intake.DataClassification(strings.ToLower(strings.TrimSpace(string(spec.DataClassification))))
	if !classification.IsKnown() {
		if e.cfg.UnknownClassification == PolicyReject {
			return nil, fmt.Errorf("%w: %q", ErrUnknownClassification, spec.DataClassification)
		}
		warnings = append(warnings, fmt.Sprintf("unrecognized data classification %q scored as restricted", spec.DataClassification))
		classification = intake.ClassificationRestricted
	}
	scored.DataClassification = classification

	ttm := e.cfg.DefaultTimeToMarket
	switch {
	case o.timeToMarket != nil:
		ttm = *o.timeToMarket
	case spec.TimeToMarket != nil:
		ttm = *spec.TimeToMarket
	}
	if clamped := clamp(ttm); clamped != ttm {
		warnings = append(warnings, fmt.Sprintf("time to market %d clamped to %d", ttm, clamped))
		ttm = clamped
	}

	b := e.Breakdown(scored, ttm)
	decision := Classify(b, classification, e.cfg)

	return &Result{
		Path:        decision.Path,
		Score:       b.Score(),
		Breakdown:   b,
		Explanation: Explain(decision.Path, b, scored.Risks),
		Rule:        decision.Rule,
		Reasons:     decision.Reasons,
		Warnings:    warnings,
		SpecHash:    spec.Hash(),
	}, nil
}

// Breakdown runs the six scorers and attaches the supplied time to market.
func (e *Engine) Breakdown(spec *intake.StructuredSpec, timeToMarket int) ScoreBreakdown {
	return ScoreBreakdown{
		DataComplexity:           DataComplexity(spec, e.cfg),
		IntegrationComplexity:    IntegrationComplexity(spec, e.cfg),
		UserScale:                UserScale(spec, e.cfg),
		SecurityRequirements:     SecurityRequirements(spec, e.cfg),
		AvailabilityRequirements: AvailabilityRequirements(spec, e.cfg),
		CustomizationNeeds:       CustomizationNeeds(spec, e.cfg),
		TimeToMarket:             clamp(timeToMarket),
	}
}

var defaultEngine = &Engine{cfg: DefaultConfig()}

// ComputeRouting routes spec with the default configuration and an explicit
// time to market.
func ComputeRouting(spec *intake.StructuredSpec, timeToMarket int) (*Result, error) {
	return defaultEngine.Route(spec, WithTimeToMarket(timeToMarket))
}
