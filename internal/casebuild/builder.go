// Package casebuild turns scenario instances into remote case payloads.
package casebuild

import (
	"context"
	"fmt"
	"strings"

	"featurerail/internal/cucumber"
	"featurerail/internal/testrail"
)

const (
	CaseTypeName = "Functional"
	TemplateName = "Test Case (Steps)"
	// Estimate is ten minutes in TestRail timespan notation.
	Estimate = "10m"

	AutomationManual    = "0"
	AutomationAutomated = "1"
	AutomationStencil   = "2"

	stencilMarker   = "stencil"
	automatedMarker = "automated"
	manualMarker    = "manual"
	nondestructive  = "nondestructive"
)

// priorityRules are checked in order; the first keyword found in a
// scenario tag wins.
var priorityRules = []struct {
	keyword  string
	priority string
}{
	{"smoke", "Critical"},
	{"sanity", "High"},
	{"regression", "Medium"},
}

const defaultPriority = "Low"

// Remote is the subset of the remote API the builder needs.
type Remote interface {
	testrail.PriorityRepository
	testrail.CaseTypeRepository
	testrail.TemplateRepository
}

// Input is everything needed to build one case.
type Input struct {
	Feature       *cucumber.Feature
	Instance      cucumber.Instance
	SuiteID       int
	SectionID     int
	Preconditions []string
}

// Builder builds case payloads. Lookup tables are fetched once.
type Builder struct {
	remote     Remote
	projectID  int
	projectKey string

	loaded     bool
	priorities map[string]int
	typeID     int
	templateID int
}

// NewBuilder constructs a builder. projectKey is the issue tracker key
// (for example SHOP) used to recognise reference tags.
func NewBuilder(remote Remote, projectID int, projectKey string) *Builder {
	return &Builder{remote: remote, projectID: projectID, projectKey: strings.TrimSpace(projectKey)}
}

// Build converts one scenario instance into a case payload.
func (b *Builder) Build(ctx context.Context, in Input) (testrail.Case, error) {
	if err := b.load(ctx); err != nil {
		return testrail.Case{}, err
	}
	scenario := in.Instance.Scenario
	featureTags := in.Feature.Tags

	c := testrail.Case{
		Title:                in.Instance.Title,
		SuiteID:              in.SuiteID,
		SectionID:            in.SectionID,
		PriorityID:           b.priorities[PriorityName(scenario.Tags)],
		TypeID:               b.typeID,
		TemplateID:           b.templateID,
		Estimate:             Estimate,
		Refs:                 b.Refs(featureTags, scenario.Tags),
		CustomTags:           strings.Join(b.CustomTags(featureTags, scenario.Tags), ", "),
		CustomAutomationType: AutomationType(scenario.Tags),
		CustomPreconds:       strings.Join(in.Preconditions, "\n"),
		CustomStepsSeparated: Steps(in.Preconditions, in.Instance.Steps),
	}
	if in.Instance.Row != nil {
		dataSet := in.Instance.Row.JSON()
		c.CustomDataSet = &dataSet
	}
	return c, nil
}

func (b *Builder) load(ctx context.Context) error {
	if b.loaded {
		return nil
	}
	priorities, err := b.remote.GetPriorities(ctx)
	if err != nil {
		return fmt.Errorf("list priorities: %w", err)
	}
	types, err := b.remote.GetCaseTypes(ctx)
	if err != nil {
		return fmt.Errorf("list case types: %w", err)
	}
	templates, err := b.remote.GetTemplates(ctx, b.projectID)
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}

	b.priorities = make(map[string]int, len(priorities))
	for _, p := range priorities {
		if _, ok := b.priorities[p.Name]; !ok {
			b.priorities[p.Name] = p.ID
		}
	}
	for _, t := range types {
		if t.Name == CaseTypeName {
			b.typeID = t.ID
			break
		}
	}
	for _, t := range templates {
		if t.Name == TemplateName {
			b.templateID = t.ID
			break
		}
	}
	b.loaded = true
	return nil
}

// Refs joins reference tags (feature first, then scenario) without the leading @.
func (b *Builder) Refs(featureTags, scenarioTags []string) string {
	refs := make([]string, 0)
	for _, tag := range append(append([]string(nil), featureTags...), scenarioTags...) {
		if b.isReference(tag) {
			refs = append(refs, strings.TrimPrefix(tag, "@"))
		}
	}
	return strings.Join(refs, ", ")
}

// CustomTags returns scenario then feature tags that carry no automation
// state, reference or identifier meaning.
func (b *Builder) CustomTags(featureTags, scenarioTags []string) []string {
	tags := make([]string, 0)
	for _, tag := range append(append([]string(nil), scenarioTags...), featureTags...) {
		switch {
		case strings.Contains(tag, automatedMarker), strings.Contains(tag, manualMarker):
		case strings.Contains(tag, nondestructive):
		case b.isReference(tag), cucumber.IsIdentifierTag(tag):
		default:
			tags = append(tags, tag)
		}
	}
	return tags
}

func (b *Builder) isReference(tag string) bool {
	return b.projectKey != "" && strings.Contains(tag, b.projectKey+"-")
}

// PriorityName maps scenario tags to a priority name.
func PriorityName(tags []string) string {
	for _, rule := range priorityRules {
		if cucumber.HasTagContaining(tags, rule.keyword) {
			return rule.priority
		}
	}
	return defaultPriority
}

// AutomationType derives custom_automation_type from scenario tags.
func AutomationType(tags []string) string {
	switch {
	case cucumber.HasTagContaining(tags, stencilMarker):
		return AutomationStencil
	case cucumber.HasTagContaining(tags, automatedMarker):
		return AutomationAutomated
	default:
		return AutomationManual
	}
}

// Steps lists preconditions followed by the formatted scenario steps.
func Steps(preconditions []string, steps []cucumber.Step) []testrail.CaseStep {
	out := make([]testrail.CaseStep, 0, len(preconditions)+len(steps))
	for _, pre := range preconditions {
		out = append(out, testrail.CaseStep{Content: pre, Expected: ""})
	}
	for _, step := range steps {
		out = append(out, testrail.CaseStep{Content: FormatStep(step), Expected: ""})
	}
	return out
}

// FormatStep renders a step as **Keyword:** text plus its data table.
func FormatStep(step cucumber.Step) string {
	return "**" + strings.TrimSpace(step.Keyword) + ":** " + strings.TrimSpace(step.Text) + formatTable(step.Table)
}

func formatTable(table [][]string) string {
	if len(table) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n*Data Table*\n")
	for _, row := range table {
		for _, cell := range row {
			sb.WriteString("|")
			sb.WriteString(cell)
		}
		sb.WriteString("|\n")
	}
	return sb.String()
}

// Preconditions formats background steps as precondition lines.
func Preconditions(background []cucumber.Step) []string {
	out := make([]string, 0, len(background))
	for _, step := range background {
		out = append(out, FormatStep(step))
	}
	return out
}
