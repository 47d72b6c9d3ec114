package intake

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// DataClassification is the sensitivity tier of the data an intake touches.
type DataClassification string

const (
	ClassificationPublic       DataClassification = "public"
	ClassificationInternal     DataClassification = "internal"
	ClassificationConfidential DataClassification = "confidential"
	ClassificationRestricted   DataClassification = "restricted"
)

// AllClassifications returns the classifications from least to most restrictive.
func AllClassifications() []DataClassification {
	return []DataClassification{
		ClassificationPublic,
		ClassificationInternal,
		ClassificationConfidential,
		ClassificationRestricted,
	}
}

// IsKnown reports whether c is one of the four enumerated classifications.
func (c DataClassification) IsKnown() bool {
	switch c {
	case ClassificationPublic, ClassificationInternal, ClassificationConfidential, ClassificationRestricted:
		return true
	default:
		return false
	}
}

// Priority is the MoSCoW priority used by integrations and UX needs.
type Priority string

const (
	PriorityMust   Priority = "must"
	PriorityShould Priority = "should"
	PriorityCould  Priority = "could"
)

// IntegrationType is the data direction of an integration.
type IntegrationType string

const (
	IntegrationRead          IntegrationType = "read"
	IntegrationWrite         IntegrationType = "write"
	IntegrationBidirectional IntegrationType = "bidirectional"
)

// StructuredSpec is the normalized answer set extracted from an interview transcript.
type StructuredSpec struct {
	ProblemStatement    string                    `json:"problemStatement" yaml:"problemStatement"`
	CurrentProcess      string                    `json:"currentProcess" yaml:"currentProcess"`
	PainPoints          []string                  `json:"painPoints" yaml:"painPoints"`
	Goals               []string                  `json:"goals" yaml:"goals"`
	Constraints         []string                  `json:"constraints" yaml:"constraints"`
	Users               []UserDefinition          `json:"users" yaml:"users"`
	Frequency           string                    `json:"frequency" yaml:"frequency"`
	Volumes             string                    `json:"volumes" yaml:"volumes"`
	Environments        []string                  `json:"environments" yaml:"environments"`
	DataTypes           []string                  `json:"dataTypes" yaml:"dataTypes"`
	DataClassification  DataClassification        `json:"dataClassification" yaml:"dataClassification"`
	RetentionPeriod     string                    `json:"retentionPeriod" yaml:"retentionPeriod"`
	PrivacyRequirements []string                  `json:"privacyRequirements" yaml:"privacyRequirements"`
	Integrations        []IntegrationNeed         `json:"integrations" yaml:"integrations"`
	UxNeeds             []UxRequirement           `json:"uxNeeds" yaml:"uxNeeds"`
	NFRs                NonFunctionalRequirements `json:"nfrs" yaml:"nfrs"`
	AcceptanceCriteria  []AcceptanceCriterion     `json:"acceptanceCriteria" yaml:"acceptanceCriteria"`
	TestSuggestions     []TestSuggestion          `json:"testSuggestions" yaml:"testSuggestions"`
	Risks               []Risk                    `json:"risks" yaml:"risks"`
	Assumptions         []string                  `json:"assumptions" yaml:"assumptions"`
	OpenQuestions       []string                  `json:"openQuestions" yaml:"openQuestions"`

	// TimeToMarket is the urgency factor (0-100) supplied outside the interview.
	// Nil means the caller did not provide one.
	TimeToMarket *int `json:"timeToMarket,omitempty" yaml:"timeToMarket,omitempty"`
}

// UserDefinition describes one persona. Count is free text from the interview.
type UserDefinition struct {
	Persona   string `json:"persona" yaml:"persona"`
	Count     string `json:"count" yaml:"count"`
	TechLevel string `json:"techLevel" yaml:"techLevel"`
}

type IntegrationNeed struct {
	System   string          `json:"system" yaml:"system"`
	Type     IntegrationType `json:"type" yaml:"type"`
	Priority Priority        `json:"priority" yaml:"priority"`
}

type UxRequirement struct {
	Type        string   `json:"type" yaml:"type"`
	Description string   `json:"description" yaml:"description"`
	Priority    Priority `json:"priority" yaml:"priority"`
}

// NonFunctionalRequirements holds the NFR answers. Availability is free text.
type NonFunctionalRequirements struct {
	Availability  string `json:"availability" yaml:"availability"`
	ResponseTime  string `json:"responseTime" yaml:"responseTime"`
	Throughput    string `json:"throughput" yaml:"throughput"`
	Auditability  bool   `json:"auditability" yaml:"auditability"`
	SupportHours  string `json:"supportHours" yaml:"supportHours"`
	DataRetention string `json:"dataRetention" yaml:"dataRetention"`
}

// AcceptanceCriterion is a Given/When/Then scenario tied to a story.
type AcceptanceCriterion struct {
	ID       string `json:"id" yaml:"id"`
	StoryRef string `json:"storyRef" yaml:"storyRef"`
	Given    string `json:"given" yaml:"given"`
	When     string `json:"when" yaml:"when"`
	Then     string `json:"then" yaml:"then"`
}

type TestSuggestion struct {
	ID          string `json:"id" yaml:"id"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Priority    string `json:"priority" yaml:"priority"`
}

type Risk struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
	Probability string `json:"probability" yaml:"probability"`
	Impact      string `json:"impact" yaml:"impact"`
	Mitigation  string `json:"mitigation" yaml:"mitigation"`
}

// Normalized returns a copy of the spec whose slices are never nil.
// The receiver is left untouched.
func (s *StructuredSpec) Normalized() *StructuredSpec {
	if s == nil {
		return nil
	}
	out := *s
	out.PainPoints = cloneStrings(s.PainPoints)
	out.Goals = cloneStrings(s.Goals)
	out.Constraints = cloneStrings(s.Constraints)
	out.Environments = cloneStrings(s.Environments)
	out.DataTypes = cloneStrings(s.DataTypes)
	out.PrivacyRequirements = cloneStrings(s.PrivacyRequirements)
	out.Assumptions = cloneStrings(s.Assumptions)
	out.OpenQuestions = cloneStrings(s.OpenQuestions)
	out.Users = append([]UserDefinition{}, s.Users...)
	out.Integrations = append([]IntegrationNeed{}, s.Integrations...)
	out.UxNeeds = append([]UxRequirement{}, s.UxNeeds...)
	out.AcceptanceCriteria = append([]AcceptanceCriterion{}, s.AcceptanceCriteria...)
	out.TestSuggestions = append([]TestSuggestion{}, s.TestSuggestions...)
	out.Risks = append([]Risk{}, s.Risks...)
	if s.TimeToMarket != nil {
		ttm := *s.TimeToMarket
		out.TimeToMarket = &ttm
	}
	return &out
}

func cloneStrings(in []string) []string {
	return append([]string{}, in...)
}

// TotalUsers sums the parsed persona counts.
func (s *StructuredSpec) TotalUsers() int {
	total := 0
	for _, u := range s.Users {
		total += ParseUserCount(u.Count)
	}
	return total
}

// Hash returns a deterministic hash of the spec. Routing results record it so a
// stored decision can be matched to the spec version it was computed from.
func (s *StructuredSpec) Hash() string {
	data, err := json.Marshal(s.Normalized())
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
