package routing

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
)

var keyFactors = map[DeliveryPath][]string{
	PathConfig: {
		"Standard use case suitable for low-code approach",
		"Moderate integration complexity",
		"Reasonable time-to-market expectations",
	},
	PathProductGrade: {
		"Complex customization requirements",
		"Multiple integrations needed",
		"Long-term maintainability important",
	},
	PathCritical: {
		"High security/compliance requirements",
		"Mission-critical availability needed",
		"Requires extensive testing and validation",
	},
	PathAIDisposable: {
		"Simple, well-defined scope",
		"Limited lifespan acceptable",
		"Speed to delivery is priority",
	},
	PathBuy: {
		"Standard requirements that COTS can satisfy",
		"Limited customization needed",
		"Cost-effective for scope",
	},
}

// KeyFactors returns the canned rationale for a path.
func KeyFactors(p DeliveryPath) []string {
	return append([]string(nil), keyFactors[p]...)
}

// Explain renders the markdown report for a routing decision. The output is
// a pure function of its arguments; downstream tools parse the table.
func Explain(p DeliveryPath, b ScoreBreakdown, risks []intake.Risk) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## Routing Recommendation: %s\n\n", p.Label())

	sb.WriteString("### Score Summary\n\n")
	sb.WriteString("| Factor | Score | Level |\n")
	sb.WriteString("|--------|-------|-------|\n")
	for _, f := range b.Factors() {
		fmt.Fprintf(&sb, "| %s | %d | %s |\n", f.Label, f.Score, f.Level)
	}
	sb.WriteString("\n")

	sb.WriteString("### Key Factors\n\n")
	for _, line := range keyFactors[p] {
		fmt.Fprintf(&sb, "- %s\n", line)
	}

	if len(risks) > 0 {
		sb.WriteString("\n### Identified Risks\n\n")
		for _, r := range risks {
			fmt.Fprintf(&sb, "- **%s** (%s probability, %s impact)\n", r.Description, r.Probability, r.Impact)
		}
	}

	return sb.String()
}
