package routing

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
)

// ClassificationPolicy decides what happens when the extraction step
// produces a classification outside the four known values.
type ClassificationPolicy string

const (
	// PolicyRestrictive scores an unknown classification as restricted and
	// attaches a warning to the result.
	PolicyRestrictive ClassificationPolicy = "restrictive"
	// PolicyReject fails the routing call with ErrUnknownClassification.
	PolicyReject ClassificationPolicy = "reject"
)

// ClassificationWeights assigns a score contribution to each classification.
type ClassificationWeights struct {
	Public       int `yaml:"public" json:"public"`
	Internal     int `yaml:"internal" json:"internal"`
	Confidential int `yaml:"confidential" json:"confidential"`
	Restricted   int `yaml:"restricted" json:"restricted"`
}

// For returns the weight of c. Unknown values fail closed onto Restricted.
func (w ClassificationWeights) For(c intake.DataClassification) int {
	switch c {
	case intake.ClassificationPublic:
		return w.Public
	case intake.ClassificationInternal:
		return w.Internal
	case intake.ClassificationConfidential:
		return w.Confidential
	default:
		return w.Restricted
	}
}

type DataWeights struct {
	Base                  int                   `yaml:"base" json:"base"`
	PerDataType           int                   `yaml:"per_data_type" json:"per_data_type"`
	PerPrivacyRequirement int                   `yaml:"per_privacy_requirement" json:"per_privacy_requirement"`
	Classification        ClassificationWeights `yaml:"classification" json:"classification"`
}

type IntegrationWeights struct {
	Base          int `yaml:"base" json:"base"`
	Read          int `yaml:"read" json:"read"`
	Write         int `yaml:"write" json:"write"`
	Bidirectional int `yaml:"bidirectional" json:"bidirectional"`
	// UnknownType is added for integrations whose type is not one of the three above.
	UnknownType  int `yaml:"unknown_type" json:"unknown_type"`
	MustPriority int `yaml:"must_priority" json:"must_priority"`
}

// ForType returns the contribution of a single integration type.
func (w IntegrationWeights) ForType(t intake.IntegrationType) int {
	switch t {
	case intake.IntegrationRead:
		return w.Read
	case intake.IntegrationWrite:
		return w.Write
	case intake.IntegrationBidirectional:
		return w.Bidirectional
	default:
		return w.UnknownType
	}
}

// Breakpoint maps head counts strictly below Below to Score.
type Breakpoint struct {
	Below int `yaml:"below" json:"below"`
	Score int `yaml:"score" json:"score"`
}

type UserScaleConfig struct {
	Breakpoints []Breakpoint `yaml:"breakpoints" json:"breakpoints"`
	Max         int          `yaml:"max" json:"max"`
}

type SecurityWeights struct {
	Base           int                   `yaml:"base" json:"base"`
	Classification ClassificationWeights `yaml:"classification" json:"classification"`
	Auditability   int                   `yaml:"auditability" json:"auditability"`
}

type AvailabilityScores struct {
	AlwaysOn      int `yaml:"always_on" json:"always_on"`
	High          int `yaml:"high" json:"high"`
	BusinessHours int `yaml:"business_hours" json:"business_hours"`
	Standard      int `yaml:"standard" json:"standard"`
}

type CustomizationWeights struct {
	Base                   int `yaml:"base" json:"base"`
	PerMustUxNeed          int `yaml:"per_must_ux_need" json:"per_must_ux_need"`
	PerAcceptanceCriterion int `yaml:"per_acceptance_criterion" json:"per_acceptance_criterion"`
	AcceptanceCriteriaCap  int `yaml:"acceptance_criteria_cap" json:"acceptance_criteria_cap"`
}

// Thresholds are the cut-offs of the path rule cascade. Comparisons are strict.
type Thresholds struct {
	CriticalSecurity          int `yaml:"critical_security" json:"critical_security"`
	CriticalAvailability      int `yaml:"critical_availability" json:"critical_availability"`
	ProductGradeAverage       int `yaml:"product_grade_average" json:"product_grade_average"`
	ProductGradeIntegration   int `yaml:"product_grade_integration" json:"product_grade_integration"`
	ProductGradeCustomization int `yaml:"product_grade_customization" json:"product_grade_customization"`
	AIDisposableAverage       int `yaml:"ai_disposable_average" json:"ai_disposable_average"`
	AIDisposableIntegration   int `yaml:"ai_disposable_integration" json:"ai_disposable_integration"`
	AIDisposableUserScale     int `yaml:"ai_disposable_user_scale" json:"ai_disposable_user_scale"`
	AIDisposableTimeToMarket  int `yaml:"ai_disposable_time_to_market" json:"ai_disposable_time_to_market"`
	BuyCustomization          int `yaml:"buy_customization" json:"buy_customization"`
	BuyIntegration            int `yaml:"buy_integration" json:"buy_integration"`
}

// Config holds every weight, breakpoint and threshold the engine uses.
// It is a plain value: copies are independent and the engine never mutates it.
type Config struct {
	Data                  DataWeights          `yaml:"data" json:"data"`
	Integration           IntegrationWeights   `yaml:"integration" json:"integration"`
	Users                 UserScaleConfig      `yaml:"users" json:"users"`
	Security              SecurityWeights      `yaml:"security" json:"security"`
	Availability          AvailabilityScores   `yaml:"availability" json:"availability"`
	Customization         CustomizationWeights `yaml:"customization" json:"customization"`
	Thresholds            Thresholds           `yaml:"thresholds" json:"thresholds"`
	DefaultTimeToMarket   int                  `yaml:"default_time_to_market" json:"default_time_to_market"`
	UnknownClassification ClassificationPolicy `yaml:"unknown_classification" json:"unknown_classification"`
}

// DefaultConfig returns the documented routing model.
func DefaultConfig() Config {
	return Config{
		Data: DataWeights{
			Base:                  20,
			PerDataType:           5,
			PerPrivacyRequirement: 5,
			Classification:        ClassificationWeights{Public: 0, Internal: 10, Confidential: 25, Restricted: 40},
		},
		Integration: IntegrationWeights{
			Base:          10,
			Read:          10,
			Write:         15,
			Bidirectional: 25,
			UnknownType:   10,
			MustPriority:  10,
		},
		Users: UserScaleConfig{
			Breakpoints: []Breakpoint{
				{Below: 10, Score: 10},
				{Below: 50, Score: 25},
				{Below: 200, Score: 50},
				{Below: 1000, Score: 75},
			},
			Max: 100,
		},
		Security: SecurityWeights{
			Base:           10,
			Classification: ClassificationWeights{Public: 0, Internal: 15, Confidential: 40, Restricted: 70},
			Auditability:   15,
		},
		Availability: AvailabilityScores{AlwaysOn: 90, High: 60, BusinessHours: 30, Standard: 40},
		Customization: CustomizationWeights{
			Base:                   20,
			PerMustUxNeed:          10,
			PerAcceptanceCriterion: 5,
			AcceptanceCriteriaCap:  30,
		},
		Thresholds: Thresholds{
			CriticalSecurity:          80,
			CriticalAvailability:      85,
			ProductGradeAverage:       60,
			ProductGradeIntegration:   70,
			ProductGradeCustomization: 70,
			AIDisposableAverage:       35,
			AIDisposableIntegration:   30,
			AIDisposableUserScale:     30,
			AIDisposableTimeToMarket:  70,
			BuyCustomization:          30,
			BuyIntegration:            40,
		},
		DefaultTimeToMarket:   50,
		UnknownClassification: PolicyRestrictive,
	}
}

// Clone returns a deep copy.
func (c Config) Clone() Config {
	out := c
	out.Users.Breakpoints = append([]Breakpoint(nil), c.Users.Breakpoints...)
	return out
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var problems []string
	nonNegative := func(name string, v int) {
		if v < 0 {
			problems = append(problems, fmt.Sprintf("%s must not be negative (got %d)", name, v))
		}
	}
	score := func(name string, v int) {
		if v < 0 || v > 100 {
			problems = append(problems, fmt.Sprintf("%s must be within 0..100 (got %d)", name, v))
		}
	}
	weights := func(prefix string, w ClassificationWeights) {
		nonNegative(prefix+".public", w.Public)
		nonNegative(prefix+".internal", w.Internal)
		nonNegative(prefix+".confidential", w.Confidential)
		nonNegative(prefix+".restricted", w.Restricted)
	}

	nonNegative("data.base", c.Data.Base)
	nonNegative("data.per_data_type", c.Data.PerDataType)
	nonNegative("data.per_privacy_requirement", c.Data.PerPrivacyRequirement)
	weights("data.classification", c.Data.Classification)

	nonNegative("integration.base", c.Integration.Base)
	nonNegative("integration.read", c.Integration.Read)
	nonNegative("integration.write", c.Integration.Write)
	nonNegative("integration.bidirectional", c.Integration.Bidirectional)
	nonNegative("integration.unknown_type", c.Integration.UnknownType)
	nonNegative("integration.must_priority", c.Integration.MustPriority)

	if len(c.Users.Breakpoints) == 0 {
		problems = append(problems, "users.breakpoints must not be empty")
	}
	for i, bp := range c.Users.Breakpoints {
		score(fmt.Sprintf("users.breakpoints[%d].score", i), bp.Score)
		if i > 0 && bp.Below <= c.Users.Breakpoints[i-1].Below {
			problems = append(problems, fmt.Sprintf("users.breakpoints[%d].below must be greater than %d", i, c.Users.Breakpoints[i-1].Below))
		}
	}
	score("users.max", c.Users.Max)

	nonNegative("security.base", c.Security.Base)
	weights("security.classification", c.Security.Classification)
	nonNegative("security.auditability", c.Security.Auditability)

	score("availability.always_on", c.Availability.AlwaysOn)
	score("availability.high", c.Availability.High)
	score("availability.business_hours", c.Availability.BusinessHours)
	score("availability.standard", c.Availability.Standard)

	nonNegative("customization.base", c.Customization.Base)
	nonNegative("customization.per_must_ux_need", c.Customization.PerMustUxNeed)
	nonNegative("customization.per_acceptance_criterion", c.Customization.PerAcceptanceCriterion)
	nonNegative("customization.acceptance_criteria_cap", c.Customization.AcceptanceCriteriaCap)

	t := c.Thresholds
	score("thresholds.critical_security", t.CriticalSecurity)
	score("thresholds.critical_availability", t.CriticalAvailability)
	score("thresholds.product_grade_average", t.ProductGradeAverage)
	score("thresholds.product_grade_integration", t.ProductGradeIntegration)
	score("thresholds.product_grade_customization", t.ProductGradeCustomization)
	score("thresholds.ai_disposable_average", t.AIDisposableAverage)
	score("thresholds.ai_disposable_integration", t.AIDisposableIntegration)
	score("thresholds.ai_disposable_user_scale", t.AIDisposableUserScale)
	score("thresholds.ai_disposable_time_to_market", t.AIDisposableTimeToMarket)
	score("thresholds.buy_customization", t.BuyCustomization)
	score("thresholds.buy_integration", t.BuyIntegration)

	score("default_time_to_market", c.DefaultTimeToMarket)

	switch c.UnknownClassification {
	case PolicyRestrictive, PolicyReject:
	default:
		problems = append(problems, fmt.Sprintf("unknown_classification must be %q or %q (got %q)", PolicyRestrictive, PolicyReject, c.UnknownClassification))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
