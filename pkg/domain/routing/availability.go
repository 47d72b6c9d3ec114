package routing

import "strings"

// AvailabilityTier is the closed form of the free-text availability answer.
type AvailabilityTier string

const (
	TierAlwaysOn      AvailabilityTier = "always_on"
	TierHigh          AvailabilityTier = "high"
	TierBusinessHours AvailabilityTier = "business_hours"
	TierStandard      AvailabilityTier = "standard"
)

// availabilityPatterns is checked top to bottom; the first substring hit wins.
var availabilityPatterns = []struct {
	needle string
	tier   AvailabilityTier
}{
	{"24/7", TierAlwaysOn},
	{"99.9", TierAlwaysOn},
	{"99.5", TierHigh},
	{"business hours", TierBusinessHours},
}

// ClassifyAvailability maps availability text onto a tier. Unmatched or
// empty text is TierStandard.
func ClassifyAvailability(text string) AvailabilityTier {
	lower := strings.ToLower(text)
	for _, p := range availabilityPatterns {
		if strings.Contains(lower, p.needle) {
			return p.tier
		}
	}
	return TierStandard
}

// Score returns the configured score for the tier.
func (t AvailabilityTier) Score(s AvailabilityScores) int {
	switch t {
	case TierAlwaysOn:
		return s.AlwaysOn
	case TierHigh:
		return s.High
	case TierBusinessHours:
		return s.BusinessHours
	default:
		return s.Standard
	}
}
