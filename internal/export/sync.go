// Package export creates and updates remote cases from feature files and
// writes the returned identifiers back into the files.
package export

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"featurerail/internal/casebuild"
	"featurerail/internal/cucumber"
	"featurerail/internal/taxonomy"
	"featurerail/internal/testrail"
)

// Remote is the subset of the remote API the synchronizer needs.
type Remote interface {
	taxonomy.Remote
	casebuild.Remote
	testrail.CaseRepository
}

// Reporter receives per-scenario outcomes meant for the operator.
type Reporter interface {
	Created(scenario string, ids []int)
	Updated(scenario string, ids []int)
	Skipped(scenario string, err error)
}

// Summary counts what a sync did.
type Summary struct {
	Created []int
	Updated []int
	Skipped []string
}

func (s *Summary) add(other Summary) {
	s.Created = append(s.Created, other.Created...)
	s.Updated = append(s.Updated, other.Updated...)
	s.Skipped = append(s.Skipped, other.Skipped...)
}

// Synchronizer exports the scenarios of feature files.
type Synchronizer struct {
	remote   Remote
	resolver *taxonomy.Resolver
	builder  *casebuild.Builder
	reporter Reporter
	logger   *zap.Logger
	rewrite  func(path string, line, column int, inserted string) error
}

// Options configures a Synchronizer.
type Options struct {
	ProjectID  int
	ProjectKey string
	Reporter   Reporter
	Logger     *zap.Logger
}

// NewSynchronizer builds a synchronizer with a fresh taxonomy cache.
func NewSynchronizer(remote Remote, opts Options) *Synchronizer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Synchronizer{
		remote:   remote,
		resolver: taxonomy.NewResolver(remote, opts.ProjectID, logger),
		builder:  casebuild.NewBuilder(remote, opts.ProjectID, opts.ProjectKey),
		reporter: reporter,
		logger:   logger,
		rewrite:  cucumber.RewriteLine,
	}
}

// SyncAll synchronizes every feature and aggregates the summaries.
func (s *Synchronizer) SyncAll(ctx context.Context, features []*cucumber.Feature) (Summary, error) {
	var total Summary
	for _, feature := range features {
		summary, err := s.Sync(ctx, feature)
		total.add(summary)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Sync creates or updates the cases of one feature. Scenarios are handled
// from the bottom of the file upwards so that inserting tag lines never
// shifts the line of a scenario still to be processed.
func (s *Synchronizer) Sync(ctx context.Context, feature *cucumber.Feature) (Summary, error) {
	var summary Summary
	tax, err := s.resolver.Resolve(ctx, feature)
	if err != nil {
		return summary, fmt.Errorf("resolve taxonomy for %q: %w", feature.Name, err)
	}
	s.logger.Debug("exporting feature",
		zap.String("feature", feature.Name),
		zap.String("path", feature.Path),
		zap.Int("scenarios", len(feature.Scenarios)),
	)

	order := make([]int, len(feature.Scenarios))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return feature.Scenarios[order[a]].Location.Line > feature.Scenarios[order[b]].Location.Line
	})

	for _, i := range order {
		scenario := &feature.Scenarios[i]
		cases, err := s.buildCases(ctx, feature, scenario, tax)
		if err != nil {
			return summary, err
		}
		tags := cucumber.IdentifierTags(scenario.Tags)
		if len(tags) > 0 {
			ids, err := s.update(ctx, feature, scenario, tags, cases)
			var mismatch *MismatchError
			if errors.As(err, &mismatch) {
				summary.Skipped = append(summary.Skipped, scenario.Name)
				s.reporter.Skipped(scenario.Name, err)
				continue
			}
			if err != nil {
				return summary, err
			}
			summary.Updated = append(summary.Updated, ids...)
			s.reporter.Updated(scenario.Name, ids)
			continue
		}
		ids, err := s.create(ctx, feature, scenario, tax, cases)
		summary.Created = append(summary.Created, ids...)
		if err != nil {
			return summary, err
		}
		s.reporter.Created(scenario.Name, ids)
	}
	return summary, nil
}

func (s *Synchronizer) buildCases(ctx context.Context, feature *cucumber.Feature, scenario *cucumber.Scenario, tax taxonomy.Taxonomy) ([]testrail.Case, error) {
	preconditions := casebuild.Preconditions(scenario.Background)
	instances := scenario.Expand()
	cases := make([]testrail.Case, 0, len(instances))
	for _, instance := range instances {
		c, err := s.builder.Build(ctx, casebuild.Input{
			Feature:       feature,
			Instance:      instance,
			SuiteID:       tax.SuiteID,
			SectionID:     tax.TargetSectionID(),
			Preconditions: preconditions,
		})
		if err != nil {
			return nil, fmt.Errorf("build case %q: %w", instance.Title, err)
		}
		cases = append(cases, c)
	}
	return cases, nil
}

func (s *Synchronizer) update(ctx context.Context, feature *cucumber.Feature, scenario *cucumber.Scenario, tags []string, cases []testrail.Case) ([]int, error) {
	if len(tags) != len(cases) {
		return nil, &MismatchError{Path: feature.Path, Scenario: scenario.Name, Tags: tags, Cases: len(cases)}
	}
	ids := make([]int, 0, len(tags))
	for i, tag := range tags {
		id, err := cucumber.CaseIDFromTag(tag)
		if err != nil {
			return ids, err
		}
		if _, err := s.remote.UpdateCase(ctx, id, cases[i]); err != nil {
			return ids, fmt.Errorf("update case %d: %w", id, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// create adds one case per instance. When an add fails partway through an
// outline, the ids created so far are still written to the file so the next
// export reports a tag count mismatch instead of duplicating those cases.
func (s *Synchronizer) create(ctx context.Context, feature *cucumber.Feature, scenario *cucumber.Scenario, tax taxonomy.Taxonomy, cases []testrail.Case) ([]int, error) {
	ids := make([]int, 0, len(cases))
	var addErr error
	for _, c := range cases {
		created, err := s.remote.AddCase(ctx, tax.TargetSectionID(), c)
		if err != nil {
			addErr = fmt.Errorf("create case %q: %w", c.Title, err)
			break
		}
		ids = append(ids, created.ID)
	}
	if len(ids) == 0 {
		return ids, addErr
	}
	if err := s.writeIdentifiers(feature, scenario, ids); err != nil {
		return ids, errors.Join(addErr, err)
	}
	return ids, addErr
}

func (s *Synchronizer) writeIdentifiers(feature *cucumber.Feature, scenario *cucumber.Scenario, ids []int) error {
	var tagText strings.Builder
	for _, id := range ids {
		tagText.WriteString(cucumber.IdentifierTag(id))
		tagText.WriteString(" ")
	}
	line, column := scenario.Location.Line, scenario.Location.Column
	if scenario.HasTags() {
		line--
	} else {
		tagText.WriteString("\n")
		tagText.WriteString(strings.Repeat(" ", max(column-1, 0)))
	}
	if err := s.rewrite(feature.Path, line, column, tagText.String()); err != nil {
		return fmt.Errorf("write identifiers for %q: %w", scenario.Name, err)
	}
	return nil
}

type nopReporter struct{}

func (nopReporter) Created(string, []int) {}
func (nopReporter) Updated(string, []int) {}
func (nopReporter) Skipped(string, error) {}
