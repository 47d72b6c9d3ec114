package routing

import (
	"fmt"

	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
)

// Rule names recorded on a Decision.
const (
	RuleCritical     = "critical"
	RuleProductGrade = "product_grade"
	RuleAIDisposable = "ai_disposable"
	RuleBuy          = "buy"
	RuleDefault      = "default"
)

// Decision is the outcome of the rule cascade. Reasons lists the conditions
// of the matched rule that held.
type Decision struct {
	Path    DeliveryPath `json:"path"`
	Rule    string       `json:"rule"`
	Reasons []string     `json:"reasons"`
}

// Classify runs the ordered rule cascade. The first matching rule wins;
// rules overlap, so the order is part of the contract. Classifications
// outside the known set are treated as restricted.
func Classify(b ScoreBreakdown, c intake.DataClassification, cfg Config) Decision {
	t := cfg.Thresholds
	avg := b.Average()

	var reasons []string
	if c == intake.ClassificationRestricted || !c.IsKnown() {
		reasons = append(reasons, fmt.Sprintf("data classification %q is treated as restricted", c))
	}
	if b.SecurityRequirements > t.CriticalSecurity {
		reasons = append(reasons, fmt.Sprintf("security requirements %d > %d", b.SecurityRequirements, t.CriticalSecurity))
	}
	if b.AvailabilityRequirements > t.CriticalAvailability {
		reasons = append(reasons, fmt.Sprintf("availability requirements %d > %d", b.AvailabilityRequirements, t.CriticalAvailability))
	}
	if len(reasons) > 0 {
		return Decision{Path: PathCritical, Rule: RuleCritical, Reasons: reasons}
	}

	if avg > float64(t.ProductGradeAverage) {
		reasons = append(reasons, fmt.Sprintf("average score %.2f > %d", avg, t.ProductGradeAverage))
	}
	if b.IntegrationComplexity > t.ProductGradeIntegration {
		reasons = append(reasons, fmt.Sprintf("integration complexity %d > %d", b.IntegrationComplexity, t.ProductGradeIntegration))
	}
	if b.CustomizationNeeds > t.ProductGradeCustomization {
		reasons = append(reasons, fmt.Sprintf("customization needs %d > %d", b.CustomizationNeeds, t.ProductGradeCustomization))
	}
	if len(reasons) > 0 {
		return Decision{Path: PathProductGrade, Rule: RuleProductGrade, Reasons: reasons}
	}

	if avg < float64(t.AIDisposableAverage) &&
		b.IntegrationComplexity < t.AIDisposableIntegration &&
		b.UserScale < t.AIDisposableUserScale &&
		b.TimeToMarket > t.AIDisposableTimeToMarket {
		return Decision{Path: PathAIDisposable, Rule: RuleAIDisposable, Reasons: []string{
			fmt.Sprintf("average score %.2f < %d", avg, t.AIDisposableAverage),
			fmt.Sprintf("integration complexity %d < %d", b.IntegrationComplexity, t.AIDisposableIntegration),
			fmt.Sprintf("user scale %d < %d", b.UserScale, t.AIDisposableUserScale),
			fmt.Sprintf("time to market %d > %d", b.TimeToMarket, t.AIDisposableTimeToMarket),
		}}
	}

	if b.CustomizationNeeds < t.BuyCustomization && b.IntegrationComplexity < t.BuyIntegration {
		return Decision{Path: PathBuy, Rule: RuleBuy, Reasons: []string{
			fmt.Sprintf("customization needs %d < %d", b.CustomizationNeeds, t.BuyCustomization),
			fmt.Sprintf("integration complexity %d < %d", b.IntegrationComplexity, t.BuyIntegration),
		}}
	}

	return Decision{Path: PathConfig, Rule: RuleDefault, Reasons: []string{"no other rule matched"}}
}
