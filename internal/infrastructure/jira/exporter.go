package jira

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/intakerouter/pkg/domain"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
)

// Label attached to every issue the exporter creates.
const Label = "ai-intake-router"

const (
	epicSummaryLimit  = 100
	storySummaryLimit = 80
)

var _ domain.Exporter = (*Exporter)(nil)

// Exporter creates one Epic per intake and one Story per acceptance
// criterion, parented to the Epic.
type Exporter struct {
	client     *Client
	projectKey string
}

func NewExporter(client *Client, projectKey string) *Exporter {
	return &Exporter{client: client, projectKey: projectKey}
}

// Export fails only when the Epic cannot be created. Story failures are
// collected in the receipt.
func (e *Exporter) Export(ctx context.Context, b domain.ExportBundle) (*domain.ExportReceipt, error) {
	if b.Intake == nil || b.Spec == nil || b.Routing == nil {
		return nil, fmt.Errorf("export bundle is incomplete")
	}
	log := e.client.logger.With("intake_id", b.Intake.ID, "project", e.projectKey)
	log.Info("jira: starting export")

	epic, err := e.client.CreateIssue(ctx, EpicFields(e.projectKey, b.Spec, b.Routing.Result))
	if err != nil {
		log.Error("jira: failed to create epic", "err", err)
		return nil, fmt.Errorf("create epic: %w", err)
	}
	log.Info("jira: created epic", "key", epic.Key)

	receipt := &domain.ExportReceipt{
		EpicKey:   epic.Key,
		EpicURL:   e.client.BrowseURL(epic.Key),
		StoryKeys: []string{},
	}
	for _, ac := range b.Spec.AcceptanceCriteria {
		story, err := e.client.CreateIssue(ctx, StoryFields(e.projectKey, epic.Key, ac))
		if err != nil {
			log.Error("jira: failed to create story", "story_ref", ac.StoryRef, "err", err)
			receipt.Failures = append(receipt.Failures, fmt.Sprintf("%s: %v", ac.StoryRef, err))
			continue
		}
		log.Info("jira: created story", "key", story.Key, "story_ref", ac.StoryRef)
		receipt.StoryKeys = append(receipt.StoryKeys, story.Key)
	}
	return receipt, nil
}

// PathLabel is the issue label of a delivery path, e.g. "ai-disposable".
func PathLabel(p routing.DeliveryPath) string {
	return strings.ReplaceAll(strings.ToLower(string(p)), "_", "-")
}

// EpicFields builds the Epic of an intake.
func EpicFields(project string, spec *intake.StructuredSpec, res routing.Result) IssueFields {
	goals := append([]string{}, spec.Goals...)

	users := make([]string, 0, len(spec.Users))
	for _, u := range spec.Users {
		users = append(users, fmt.Sprintf("%s: %s", u.Persona, u.Count))
	}

	risks := make([]string, 0, len(spec.Risks))
	for _, r := range spec.Risks {
		risks = append(risks, fmt.Sprintf("%s (P: %s, I: %s)", r.Description, r.Probability, r.Impact))
	}

	return IssueFields{
		Project: ProjectRef{Key: project},
		Summary: fmt.Sprintf("[%s] %s", res.Path, truncate(spec.ProblemStatement, epicSummaryLimit)),
		Description: Doc(
			Paragraph(Text("Problem Statement: "+spec.ProblemStatement)),
			Paragraph(Text(fmt.Sprintf("Delivery Path: %s (Score: %d)", res.Path, res.Score))),
			Heading(2, "Goals"),
			BulletList(goals...),
			Heading(2, "Users"),
			BulletList(users...),
			Heading(2, "Risks"),
			BulletList(risks...),
		),
		IssueType: IssueType{Name: "Epic"},
		Labels:    []string{Label, PathLabel(res.Path)},
	}
}

// StoryFields builds the Story of one acceptance criterion.
func StoryFields(project, epicKey string, ac intake.AcceptanceCriterion) IssueFields {
	fields := IssueFields{
		Project: ProjectRef{Key: project},
		Summary: fmt.Sprintf("%s: %s", ac.StoryRef, truncate(ac.When, storySummaryLimit)),
		Description: Doc(
			Heading(2, "Acceptance Criteria"),
			Paragraph(Strong("Given "), Text(ac.Given)),
			Paragraph(Strong("When "), Text(ac.When)),
			Paragraph(Strong("Then "), Text(ac.Then)),
		),
		IssueType: IssueType{Name: "Story"},
		Labels:    []string{Label},
		Parent:    &IssueRef{Key: epicKey},
	}
	if ref := strings.ToLower(strings.Join(strings.Fields(ac.StoryRef), "-")); ref != "" {
		fields.Labels = append(fields.Labels, ref)
	}
	return fields
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
