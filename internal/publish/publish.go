// Package publish replays recorded scenario runs against a test plan.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"go.uber.org/zap"

	"featurerail/internal/cucumber"
	"featurerail/internal/recorder"
	"featurerail/internal/registry"
	"featurerail/internal/testrail"
)

// ConfigurationSeparator splits a configuration name listing several configurations.
const ConfigurationSeparator = ", "

// Status names resolved against the remote statuses.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusBlocked = "blocked"
)

// Remote is the subset of the TestRail API the publisher uses.
type Remote interface {
	testrail.SuiteRepository
	testrail.PlanRepository
	testrail.TestRepository
	testrail.ResultRepository
	testrail.ConfigurationRepository
	testrail.StatusRepository
}

// Reporter receives operator-facing publish events.
type Reporter interface {
	EntryAdded(suite, plan string)
	Unmatched(suite, title string)
	Published(run string, results int)
}

// Target identifies where results go.
type Target struct {
	PlanID            int
	ProjectID         int
	ConfigurationName string
}

// Summary describes one publish pass.
type Summary struct {
	EntriesAdded []string
	Results      int
	Unmatched    []string
}

// Options configures a Publisher.
type Options struct {
	Reporter Reporter
	Logger   *zap.Logger
}

// Publisher publishes recorded runs.
type Publisher struct {
	remote   Remote
	reporter Reporter
	logger   *zap.Logger
}

// New returns a publisher backed by remote.
func New(remote Remote, opts Options) *Publisher {
	p := &Publisher{remote: remote, reporter: opts.Reporter, logger: opts.Logger}
	if p.reporter == nil {
		p.reporter = nopReporter{}
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	return p
}

// Publish makes sure every suite with recorded runs has a run for the target
// configuration in the plan, then submits one result per matched test.
func (p *Publisher) Publish(ctx context.Context, target Target, reg *registry.Registry) (Summary, error) {
	var summary Summary
	suites := reg.Suites()
	if len(suites) == 0 {
		return summary, nil
	}

	plan, err := p.remote.GetPlan(ctx, target.PlanID)
	if err != nil {
		return summary, fmt.Errorf("load plan %d: %w", target.PlanID, err)
	}
	statuses, err := p.statusIDs(ctx)
	if err != nil {
		return summary, err
	}
	groups, err := p.remote.GetConfigs(ctx, target.ProjectID)
	if err != nil {
		return summary, fmt.Errorf("load configurations: %w", err)
	}
	configs := testrail.FlattenConfigs(groups)

	var suiteIDs map[string]int
	missing := map[string]bool{}
	for _, suite := range suites {
		entries := entriesNamed(plan, suite)
		if len(entries) > 0 && hasRunForConfig(entries, target.ConfigurationName) {
			continue
		}
		if suiteIDs == nil {
			if suiteIDs, err = p.suiteIDs(ctx, target.ProjectID); err != nil {
				return summary, err
			}
		}
		suiteID, ok := suiteIDs[suite]
		if !ok {
			p.logger.Warn("suite not found in project", zap.String("suite", suite))
			missing[suite] = true
			continue
		}
		entry := newEntry(suiteID, suite, configs, target.ConfigurationName, len(entries) == 0)
		if _, err := p.remote.AddPlanEntry(ctx, plan.ID, entry); err != nil {
			return summary, fmt.Errorf("add plan entry %q: %w", suite, err)
		}
		summary.EntriesAdded = append(summary.EntriesAdded, suite)
		p.reporter.EntryAdded(suite, plan.Name)
	}

	plan, err = p.remote.GetPlan(ctx, target.PlanID)
	if err != nil {
		return summary, fmt.Errorf("reload plan %d: %w", target.PlanID, err)
	}

	published := map[string]bool{}
	for _, entry := range plan.Entries {
		for _, run := range entry.Runs {
			if !sameConfiguration(run.Config, target.ConfigurationName) || !reg.Has(run.Name) || missing[run.Name] {
				continue
			}
			published[run.Name] = true
			count, err := p.publishRun(ctx, run, reg.Runs(run.Name), statuses, &summary)
			if err != nil {
				return summary, err
			}
			summary.Results += count
		}
	}

	for _, suite := range suites {
		if published[suite] {
			continue
		}
		for _, run := range reg.Runs(suite) {
			p.unmatched(&summary, suite, run.Title)
		}
	}
	return summary, nil
}

func (p *Publisher) publishRun(ctx context.Context, run testrail.Run, scenarios []registry.ScenarioRun, statuses map[string]int, summary *Summary) (int, error) {
	tests, err := p.remote.GetTests(ctx, run.ID)
	if err != nil {
		return 0, fmt.Errorf("load tests of run %d: %w", run.ID, err)
	}
	results := make([]testrail.Result, 0, len(scenarios))
	for _, scenario := range scenarios {
		index := findTest(tests, scenario)
		if index < 0 {
			p.unmatched(summary, run.Name, scenario.Title)
			continue
		}
		test := tests[index]
		tests = append(tests[:index:index], tests[index+1:]...)
		results = append(results, buildResult(test, scenario, statuses))
	}
	if len(results) == 0 {
		return 0, nil
	}
	if _, err := p.remote.AddResults(ctx, run.ID, results); err != nil {
		return 0, fmt.Errorf("add results to run %d: %w", run.ID, err)
	}
	p.logger.Debug("results published", zap.Int("run", run.ID), zap.Int("results", len(results)))
	p.reporter.Published(run.Name, len(results))
	return len(results), nil
}

func (p *Publisher) unmatched(summary *Summary, suite, title string) {
	summary.Unmatched = append(summary.Unmatched, suite+": "+title)
	p.reporter.Unmatched(suite, title)
}

func (p *Publisher) statusIDs(ctx context.Context) (map[string]int, error) {
	statuses, err := p.remote.GetStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("load statuses: %w", err)
	}
	ids := make(map[string]int, len(statuses))
	for _, status := range statuses {
		ids[status.Name] = status.ID
	}
	for _, name := range []string{StatusPassed, StatusFailed, StatusBlocked} {
		if _, ok := ids[name]; !ok {
			return nil, fmt.Errorf("status %q not defined", name)
		}
	}
	return ids, nil
}

func (p *Publisher) suiteIDs(ctx context.Context, projectID int) (map[string]int, error) {
	suites, err := p.remote.GetSuites(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load suites: %w", err)
	}
	ids := make(map[string]int, len(suites))
	for _, suite := range suites {
		if _, ok := ids[suite.Name]; !ok {
			ids[suite.Name] = suite.ID
		}
	}
	return ids, nil
}

func entriesNamed(plan testrail.Plan, name string) []testrail.PlanEntry {
	var out []testrail.PlanEntry
	for _, entry := range plan.Entries {
		if entry.Name == name {
			out = append(out, entry)
		}
	}
	return out
}

func hasRunForConfig(entries []testrail.PlanEntry, config string) bool {
	for _, entry := range entries {
		for _, run := range entry.Runs {
			if sameConfiguration(run.Config, config) {
				return true
			}
		}
	}
	return false
}

// newEntry builds a plan entry. A fresh entry gets a run for every project
// configuration, with the configurations named in configName sharing one
// run; an entry amending an existing suite only covers configName.
func newEntry(suiteID int, suite string, configs []testrail.Config, configName string, fresh bool) testrail.PlanEntry {
	entry := testrail.PlanEntry{SuiteID: suiteID, Name: suite, IncludeAll: true}
	matching := matchingConfigIDs(configs, configName)
	if fresh {
		if len(matching) > 0 {
			entry.Runs = append(entry.Runs, testrail.Run{IncludeAll: true, ConfigIDs: matching})
		}
		for _, cfg := range configs {
			entry.ConfigIDs = append(entry.ConfigIDs, cfg.ID)
			if !slices.Contains(matching, cfg.ID) {
				entry.Runs = append(entry.Runs, testrail.Run{IncludeAll: true, ConfigIDs: []int{cfg.ID}})
			}
		}
	} else {
		entry.ConfigIDs = matching
		entry.Runs = []testrail.Run{{IncludeAll: true, ConfigIDs: matching}}
	}
	if len(entry.Runs) == 0 {
		entry.Runs = []testrail.Run{{IncludeAll: true}}
	}
	return entry
}

func configNames(configName string) []string {
	var names []string
	for _, name := range strings.Split(configName, ConfigurationSeparator) {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func matchingConfigIDs(configs []testrail.Config, configName string) []int {
	wanted := configNames(configName)
	var ids []int
	for _, cfg := range configs {
		if slices.Contains(wanted, cfg.Name) {
			ids = append(ids, cfg.ID)
		}
	}
	return ids
}

// sameConfiguration compares a run's configuration label with the configured
// name as sets of names, since the remote orders combined labels itself.
func sameConfiguration(runConfig, configName string) bool {
	left, right := configNames(runConfig), configNames(configName)
	slices.Sort(left)
	slices.Sort(right)
	return slices.Equal(left, right)
}

func findTest(tests []testrail.Test, scenario registry.ScenarioRun) int {
	for i, test := range tests {
		if test.Title == scenario.Title && sameDataSet(test.CustomDataSet, scenario.DataSet) {
			return i
		}
	}
	return -1
}

// sameDataSet compares a stored data set with a recorded example row.
// Both absent matches; otherwise both must decode to equal JSON values.
func sameDataSet(stored *string, row *cucumber.Row) bool {
	if stored == nil || row == nil {
		return stored == nil && row == nil
	}
	var left, right any
	if err := json.Unmarshal([]byte(*stored), &left); err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(row.JSON()), &right); err != nil {
		return false
	}
	return reflect.DeepEqual(left, right)
}

func buildResult(test testrail.Test, scenario registry.ScenarioRun, statuses map[string]int) testrail.Result {
	n := min(len(test.CustomStepsSeparated), len(scenario.Steps))
	derived := recorder.DeriveStates(n, scenario.FailedStep())
	steps := make([]testrail.StepResult, n)
	for i, state := range derived {
		stored := test.CustomStepsSeparated[i]
		content := stored.Content
		if scenario.DataSet != nil {
			content = scenario.DataSet.Substitute(content)
		}
		step := testrail.StepResult{
			Content:  content,
			Expected: stored.Expected,
			StatusID: statuses[state.String()],
		}
		if state == registry.StepFailed {
			step.Actual = scenario.Exception
		}
		steps[i] = step
	}

	status := StatusPassed
	if scenario.Failed {
		status = StatusFailed
	}
	return testrail.Result{
		TestID:            test.ID,
		StatusID:          statuses[status],
		Comment:           commentFromTags(scenario.Tags),
		CustomStepResults: steps,
	}
}

func commentFromTags(tags []string) string {
	var links []string
	for _, tag := range tags {
		if strings.Contains(tag, "https") {
			links = append(links, tag)
		}
	}
	return strings.Join(links, ", ")
}

type nopReporter struct{}

func (nopReporter) EntryAdded(string, string) {}
func (nopReporter) Unmatched(string, string)  {}
func (nopReporter) Published(string, int)     {}
