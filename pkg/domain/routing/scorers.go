package routing

import "github.com/felixgeelhaar/intakerouter/pkg/domain/intake"

// The six factor scorers are pure and total. Each result lies in [0,100];
// a nil spec scores like an empty one.

func DataComplexity(s *intake.StructuredSpec, cfg Config) int {
	s = orEmpty(s)
	w := cfg.Data
	score := w.Base
	score += distinct(s.DataTypes) * w.PerDataType
	score += w.Classification.For(s.DataClassification)
	score += len(s.PrivacyRequirements) * w.PerPrivacyRequirement
	return clamp(score)
}

func IntegrationComplexity(s *intake.StructuredSpec, cfg Config) int {
	s = orEmpty(s)
	w := cfg.Integration
	score := w.Base
	for _, in := range s.Integrations {
		score += w.ForType(in.Type)
		if in.Priority == intake.PriorityMust {
			score += w.MustPriority
		}
	}
	return clamp(score)
}

// UserScale maps the summed head count onto the configured breakpoints.
// Non-numeric counts contribute zero.
func UserScale(s *intake.StructuredSpec, cfg Config) int {
	total := orEmpty(s).TotalUsers()
	for _, bp := range cfg.Users.Breakpoints {
		if total < bp.Below {
			return clamp(bp.Score)
		}
	}
	return clamp(cfg.Users.Max)
}

func SecurityRequirements(s *intake.StructuredSpec, cfg Config) int {
	s = orEmpty(s)
	w := cfg.Security
	score := w.Base + w.Classification.For(s.DataClassification)
	if s.NFRs.Auditability {
		score += w.Auditability
	}
	return clamp(score)
}

func AvailabilityRequirements(s *intake.StructuredSpec, cfg Config) int {
	return clamp(ClassifyAvailability(orEmpty(s).NFRs.Availability).Score(cfg.Availability))
}

func CustomizationNeeds(s *intake.StructuredSpec, cfg Config) int {
	s = orEmpty(s)
	w := cfg.Customization
	score := w.Base
	for _, ux := range s.UxNeeds {
		if ux.Priority == intake.PriorityMust {
			score += w.PerMustUxNeed
		}
	}
	score += min(len(s.AcceptanceCriteria)*w.PerAcceptanceCriterion, w.AcceptanceCriteriaCap)
	return clamp(score)
}

func clamp(v int) int {
	return max(0, min(v, 100))
}

func distinct(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func orEmpty(s *intake.StructuredSpec) *intake.StructuredSpec {
	if s == nil {
		return &intake.StructuredSpec{}
	}
	return s
}
