// Package taxonomy maps feature names onto the suite/section/sub-section
// hierarchy of the remote service, creating missing nodes.
package taxonomy

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"featurerail/internal/cucumber"
	"featurerail/internal/testrail"
)

const (
	// DefaultSectionName is used when a feature name has a single component.
	DefaultSectionName = "Default Section"

	sectionDisplayOrder = 2
)

// Remote is the subset of the remote API the resolver needs.
type Remote interface {
	testrail.SuiteRepository
	testrail.SectionRepository
}

// Taxonomy holds the resolved ids for one feature.
type Taxonomy struct {
	SuiteID      int
	SectionID    int
	SubSectionID *int
}

// TargetSectionID is the section new cases are created in.
func (t Taxonomy) TargetSectionID() int {
	if t.SubSectionID != nil {
		return *t.SubSectionID
	}
	return t.SectionID
}

// Resolver resolves and caches taxonomy ids for one export pass.
type Resolver struct {
	remote    Remote
	projectID int
	logger    *zap.Logger

	suites   []testrail.Suite
	loaded   bool
	sections map[int][]testrail.Section
	resolved map[string]Taxonomy
}

// NewResolver constructs a resolver with empty caches.
func NewResolver(remote Remote, projectID int, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		remote:    remote,
		projectID: projectID,
		logger:    logger,
		sections:  map[int][]testrail.Section{},
		resolved:  map[string]Taxonomy{},
	}
}

// Resolve returns the suite, section and sub-section ids of a feature.
func (r *Resolver) Resolve(ctx context.Context, feature *cucumber.Feature) (Taxonomy, error) {
	name := strings.TrimSpace(feature.Name)
	if tax, ok := r.resolved[name]; ok {
		return tax, nil
	}
	components := feature.NameComponents()
	if components[0] == "" {
		return Taxonomy{}, fmt.Errorf("feature %s has no name", feature.Path)
	}

	suiteID, err := r.suiteID(ctx, components[0])
	if err != nil {
		return Taxonomy{}, err
	}

	sectionName := DefaultSectionName
	if len(components) > 1 && components[1] != "" {
		sectionName = components[1]
	}
	description := sectionDescription(feature.Description)
	sectionID, err := r.sectionID(ctx, suiteID, nil, sectionName, description)
	if err != nil {
		return Taxonomy{}, err
	}

	tax := Taxonomy{SuiteID: suiteID, SectionID: sectionID}
	parentID := sectionID
	for _, subName := range components[min(2, len(components)):] {
		if subName == "" {
			continue
		}
		parent := parentID
		subID, err := r.sectionID(ctx, suiteID, &parent, subName, description)
		if err != nil {
			return Taxonomy{}, err
		}
		parentID = subID
		tax.SubSectionID = &subID
	}

	r.resolved[name] = tax
	return tax, nil
}

func (r *Resolver) suiteID(ctx context.Context, name string) (int, error) {
	if !r.loaded {
		suites, err := r.remote.GetSuites(ctx, r.projectID)
		if err != nil {
			return 0, fmt.Errorf("list suites: %w", err)
		}
		r.suites = suites
		r.loaded = true
	}
	for _, suite := range r.suites {
		if suite.Name == name {
			r.logger.Debug("suite found", zap.String("suite", name), zap.Int("suite_id", suite.ID))
			return suite.ID, nil
		}
	}

	r.logger.Info("creating suite", zap.String("suite", name))
	created, err := r.remote.AddSuite(ctx, r.projectID, testrail.Suite{
		Name:        name,
		Description: "",
		ProjectID:   r.projectID,
		IsBaseline:  false,
		IsCompleted: false,
		IsMaster:    false,
	})
	if err != nil {
		return 0, fmt.Errorf("create suite %q: %w", name, err)
	}
	r.suites = append(r.suites, created)
	return created.ID, nil
}

// sectionID finds a section by name under parentID (nil for top level)
// or creates it.
func (r *Resolver) sectionID(ctx context.Context, suiteID int, parentID *int, name, description string) (int, error) {
	sections, ok := r.sections[suiteID]
	if !ok {
		listed, err := r.remote.GetSections(ctx, r.projectID, suiteID)
		if err != nil {
			return 0, fmt.Errorf("list sections of suite %d: %w", suiteID, err)
		}
		sections = listed
		r.sections[suiteID] = sections
	}
	for _, section := range sections {
		if section.Name == name && sameParent(section.ParentID, parentID) {
			r.logger.Debug("section found", zap.String("section", name), zap.Int("section_id", section.ID))
			return section.ID, nil
		}
	}

	r.logger.Info("creating section", zap.String("section", name), zap.Int("suite_id", suiteID))
	created, err := r.remote.AddSection(ctx, r.projectID, testrail.Section{
		SuiteID:      suiteID,
		ParentID:     parentID,
		Name:         name,
		Description:  description,
		Depth:        0,
		DisplayOrder: sectionDisplayOrder,
	})
	if err != nil {
		return 0, fmt.Errorf("create section %q: %w", name, err)
	}
	r.sections[suiteID] = append(r.sections[suiteID], created)
	return created.ID, nil
}

func sameParent(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// sectionDescription de-indents a feature description.
func sectionDescription(description string) string {
	return strings.TrimSpace(strings.ReplaceAll(description, "\n  ", "\n"))
}
