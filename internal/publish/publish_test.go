package publish

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featurerail/internal/cucumber"
	"featurerail/internal/registry"
	"featurerail/internal/testrail"
	"featurerail/internal/testrail/fake"
)

const planID = 12

var pears = &cucumber.Row{Keys: []string{"fruit"}, Values: []string{"pears"}}

type fixture struct {
	srv     *fake.Server
	suiteID int
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	srv := fake.New()
	srv.AddConfigGroup("Browsers",
		testrail.Config{ID: 1, GroupID: 1, Name: "Chrome"},
		testrail.Config{ID: 2, GroupID: 1, Name: "Firefox"})
	srv.AddPlan(planID, "Release 1")
	suite, err := srv.AddSuite(ctx, 1, testrail.Suite{Name: "Shop"})
	require.NoError(t, err)

	_, err = srv.AddCase(ctx, 10, testrail.Case{
		Title:   "Buy apples",
		SuiteID: suite.ID,
		CustomStepsSeparated: []testrail.CaseStep{
			{Content: "**Given:** a logged in customer"},
			{Content: "**Given:** a basket with apples"},
			{Content: "**When:** the customer pays", Expected: "paid"},
		},
	})
	require.NoError(t, err)
	dataSet := pears.JSON()
	_, err = srv.AddCase(ctx, 10, testrail.Case{
		Title:         "Buy pears",
		SuiteID:       suite.ID,
		CustomDataSet: &dataSet,
		CustomStepsSeparated: []testrail.CaseStep{
			{Content: "**Given:** a basket with <fruit>"},
			{Content: "**Then:** the total is shown"},
		},
	})
	require.NoError(t, err)
	srv.Calls = map[string]int{}
	return fixture{srv: srv, suiteID: suite.ID}
}

func outcomes(states ...registry.StepState) []registry.StepOutcome {
	out := make([]registry.StepOutcome, len(states))
	for i, state := range states {
		out[i] = registry.StepOutcome{Step: &cucumber.Step{Keyword: "Given", Text: "step"}, State: state}
	}
	return out
}

func shopRegistry() *registry.Registry {
	reg := registry.New()
	reg.Append(registry.ScenarioRun{
		Suite:     "Shop",
		Title:     "Buy apples",
		Tags:      []string{"@smoke", "@https://tracker.example/SHOP-1"},
		Failed:    true,
		Exception: "card declined",
		Steps:     outcomes(registry.StepPassed, registry.StepPassed, registry.StepFailed),
	})
	reg.Append(registry.ScenarioRun{
		Suite:   "Shop",
		Title:   "Buy pears",
		DataSet: pears,
		Steps:   outcomes(registry.StepPassed, registry.StepPassed),
	})
	return reg
}

type recordingReporter struct {
	entries   []string
	unmatched []string
	published map[string]int
}

func (r *recordingReporter) EntryAdded(suite, plan string) {
	r.entries = append(r.entries, suite+"@"+plan)
}
func (r *recordingReporter) Unmatched(suite, title string) {
	r.unmatched = append(r.unmatched, suite+": "+title)
}
func (r *recordingReporter) Published(run string, results int) {
	if r.published == nil {
		r.published = map[string]int{}
	}
	r.published[run] += results
}

func target() Target {
	return Target{PlanID: planID, ProjectID: 1, ConfigurationName: "Chrome"}
}

func TestPublishCreatesEntryAndResults(t *testing.T) {
	fx := newFixture(t)
	reporter := &recordingReporter{}

	summary, err := New(fx.srv, Options{Reporter: reporter}).Publish(context.Background(), target(), shopRegistry())
	require.NoError(t, err)

	assert.Equal(t, []string{"Shop"}, summary.EntriesAdded)
	assert.Equal(t, 2, summary.Results)
	assert.Empty(t, summary.Unmatched)
	assert.Equal(t, []string{"Shop@Release 1"}, reporter.entries)
	assert.Equal(t, map[string]int{"Shop": 2}, reporter.published)
	assert.Equal(t, 1, fx.srv.Count("AddPlanEntry"))
	assert.Equal(t, 1, fx.srv.Count("AddResults"))
	assert.Equal(t, 2, fx.srv.Count("GetPlan"))

	plan, err := fx.srv.GetPlan(context.Background(), planID)
	require.NoError(t, err)
	require.Len(t, plan.Entries, 1)
	entry := plan.Entries[0]
	assert.Equal(t, fx.suiteID, entry.SuiteID)
	assert.Equal(t, []int{1, 2}, entry.ConfigIDs)
	require.Len(t, entry.Runs, 2)
	assert.Equal(t, "Chrome", entry.Runs[0].Config)
	assert.Equal(t, "Firefox", entry.Runs[1].Config)

	chrome := entry.Runs[0].ID
	require.Len(t, fx.srv.Results[chrome], 1)
	assert.Empty(t, fx.srv.Results[entry.Runs[1].ID])
	results := fx.srv.Results[chrome][0]
	require.Len(t, results, 2)

	apples := results[0]
	assert.Equal(t, 5, apples.StatusID)
	assert.Equal(t, "@https://tracker.example/SHOP-1", apples.Comment)
	assert.Equal(t, []testrail.StepResult{
		{Content: "**Given:** a logged in customer", StatusID: 1},
		{Content: "**Given:** a basket with apples", StatusID: 1},
		{Content: "**When:** the customer pays", Expected: "paid", Actual: "card declined", StatusID: 5},
	}, apples.CustomStepResults)

	pearsResult := results[1]
	assert.Equal(t, 1, pearsResult.StatusID)
	assert.Empty(t, pearsResult.Comment)
	assert.Equal(t, "**Given:** a basket with pears", pearsResult.CustomStepResults[0].Content)
	assert.Equal(t, 1, pearsResult.CustomStepResults[1].StatusID)
}

func TestPublishBlocksStepsAfterFailure(t *testing.T) {
	fx := newFixture(t)
	reg := registry.New()
	reg.Append(registry.ScenarioRun{
		Suite:     "Shop",
		Title:     "Buy apples",
		Failed:    true,
		Exception: "no basket",
		Steps:     outcomes(registry.StepPassed, registry.StepFailed, registry.StepBlocked),
	})

	_, err := New(fx.srv, Options{}).Publish(context.Background(), target(), reg)
	require.NoError(t, err)

	results := fx.srv.Results[fx.srv.RunIDs(planID)[0]][0]
	steps := results[0].CustomStepResults
	assert.Equal(t, []int{1, 5, 2}, []int{steps[0].StatusID, steps[1].StatusID, steps[2].StatusID})
	assert.Empty(t, steps[0].Actual)
	assert.Equal(t, "no basket", steps[1].Actual)
	assert.Empty(t, steps[2].Actual)
}

func TestPublishUsesExistingRun(t *testing.T) {
	fx := newFixture(t)
	fx.srv.Plans[planID].Entries = []testrail.PlanEntry{{
		ID: "existing", SuiteID: fx.suiteID, Name: "Shop",
		Runs: []testrail.Run{{ID: 77, SuiteID: fx.suiteID, Name: "Shop", Config: "Chrome"}},
	}}
	fx.srv.AddTest(77, testrail.Test{ID: 900, Title: "Buy apples", CustomStepsSeparated: []testrail.CaseStep{{Content: "a"}}})

	summary, err := New(fx.srv, Options{}).Publish(context.Background(), target(), shopRegistry())
	require.NoError(t, err)

	assert.Zero(t, fx.srv.Count("AddPlanEntry"))
	assert.Zero(t, fx.srv.Count("GetSuites"))
	assert.Equal(t, 1, summary.Results)
	assert.Equal(t, []string{"Shop: Buy pears"}, summary.Unmatched)
	assert.Equal(t, 900, fx.srv.Results[77][0][0].TestID)
}

func TestPublishAmendsEntryForMissingConfiguration(t *testing.T) {
	fx := newFixture(t)
	fx.srv.Plans[planID].Entries = []testrail.PlanEntry{{
		ID: "existing", SuiteID: fx.suiteID, Name: "Shop",
		Runs: []testrail.Run{{ID: 77, SuiteID: fx.suiteID, Name: "Shop", Config: "Firefox"}},
	}}

	summary, err := New(fx.srv, Options{}).Publish(context.Background(), target(), shopRegistry())
	require.NoError(t, err)

	assert.Equal(t, []string{"Shop"}, summary.EntriesAdded)
	plan, err := fx.srv.GetPlan(context.Background(), planID)
	require.NoError(t, err)
	require.Len(t, plan.Entries, 2)
	added := plan.Entries[1]
	assert.Equal(t, []int{1}, added.ConfigIDs)
	require.Len(t, added.Runs, 1)
	assert.Equal(t, "Chrome", added.Runs[0].Config)
	assert.Equal(t, 2, summary.Results)
	assert.Empty(t, fx.srv.Results[77])
}

func TestPublishMultipleConfigurationNames(t *testing.T) {
	fx := newFixture(t)
	fx.srv.Plans[planID].Entries = []testrail.PlanEntry{{
		ID: "existing", SuiteID: fx.suiteID, Name: "Shop",
		Runs: []testrail.Run{{ID: 77, SuiteID: fx.suiteID, Name: "Shop", Config: "Chrome"}},
	}}
	tgt := target()
	tgt.ConfigurationName = "Chrome, Firefox"

	summary, err := New(fx.srv, Options{}).Publish(context.Background(), tgt, shopRegistry())
	require.NoError(t, err)

	plan, err := fx.srv.GetPlan(context.Background(), planID)
	require.NoError(t, err)
	require.Len(t, plan.Entries, 2)
	assert.Equal(t, []int{1, 2}, plan.Entries[1].ConfigIDs)
	assert.Equal(t, "Chrome, Firefox", plan.Entries[1].Runs[0].Config)
	assert.Equal(t, 2, summary.Results)
}

func TestPublishNewEntryGroupsConfiguredNames(t *testing.T) {
	fx := newFixture(t)
	fx.srv.AddConfigGroup("Platforms", testrail.Config{ID: 3, GroupID: 2, Name: "Linux"})
	tgt := target()
	tgt.ConfigurationName = "Firefox, Chrome"
	publisher := New(fx.srv, Options{})

	summary, err := publisher.Publish(context.Background(), tgt, shopRegistry())
	require.NoError(t, err)
	assert.Equal(t, []string{"Shop"}, summary.EntriesAdded)
	assert.Equal(t, 2, summary.Results)
	assert.Empty(t, summary.Unmatched)

	plan, err := fx.srv.GetPlan(context.Background(), planID)
	require.NoError(t, err)
	require.Len(t, plan.Entries, 1)
	entry := plan.Entries[0]
	assert.Equal(t, []int{1, 2, 3}, entry.ConfigIDs)
	require.Len(t, entry.Runs, 2)
	assert.Equal(t, []int{1, 2}, entry.Runs[0].ConfigIDs)
	assert.Equal(t, "Chrome, Firefox", entry.Runs[0].Config)
	assert.Equal(t, "Linux", entry.Runs[1].Config)
	require.Len(t, fx.srv.Results[entry.Runs[0].ID], 1)

	summary, err = publisher.Publish(context.Background(), tgt, shopRegistry())
	require.NoError(t, err)
	assert.Empty(t, summary.EntriesAdded)
	assert.Equal(t, 2, summary.Results)
	assert.Equal(t, 1, fx.srv.Count("AddPlanEntry"))
}

func TestSameConfigurationIgnoresOrder(t *testing.T) {
	assert.True(t, sameConfiguration("Chrome, Firefox", "Firefox, Chrome"))
	assert.True(t, sameConfiguration("Chrome", "Chrome"))
	assert.False(t, sameConfiguration("Chrome", "Chrome, Firefox"))
	assert.False(t, sameConfiguration("Firefox", "Chrome"))
}

func TestPublishDataSetMatching(t *testing.T) {
	grapes := `{"fruit": "grapes"}`
	equivalent := "{\n  \"fruit\":\"pears\"\n}"
	tests := []struct {
		name    string
		stored  *string
		row     *cucumber.Row
		matches bool
	}{
		{name: "both absent", matches: true},
		{name: "equal json", stored: &equivalent, row: pears, matches: true},
		{name: "different values", stored: &grapes, row: pears},
		{name: "test without data set", row: pears},
		{name: "run without data set", stored: &grapes},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.matches, sameDataSet(tc.stored, tc.row))
		})
	}
}

func TestPublishDoesNotReuseMatchedTest(t *testing.T) {
	fx := newFixture(t)
	reg := registry.New()
	for i := 0; i < 2; i++ {
		reg.Append(registry.ScenarioRun{Suite: "Shop", Title: "Buy apples", Steps: outcomes(registry.StepPassed)})
	}

	summary, err := New(fx.srv, Options{}).Publish(context.Background(), target(), reg)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Results)
	assert.Equal(t, []string{"Shop: Buy apples"}, summary.Unmatched)
}

func TestPublishUnknownSuiteIsReported(t *testing.T) {
	fx := newFixture(t)
	reg := registry.New()
	reg.Append(registry.ScenarioRun{Suite: "Admin", Title: "Ban user"})

	summary, err := New(fx.srv, Options{}).Publish(context.Background(), target(), reg)
	require.NoError(t, err)
	assert.Zero(t, fx.srv.Count("AddPlanEntry"))
	assert.Zero(t, fx.srv.Count("AddResults"))
	assert.Equal(t, []string{"Admin: Ban user"}, summary.Unmatched)
}

func TestPublishEmptyRegistry(t *testing.T) {
	fx := newFixture(t)
	summary, err := New(fx.srv, Options{}).Publish(context.Background(), target(), registry.New())
	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)
	assert.Empty(t, fx.srv.Calls)
}

func TestPublishTransportErrorAborts(t *testing.T) {
	fx := newFixture(t)
	boom := errors.New("connection reset")
	fx.srv.Fail["AddResults"] = boom

	_, err := New(fx.srv, Options{}).Publish(context.Background(), target(), shopRegistry())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestPublishMissingStatus(t *testing.T) {
	fx := newFixture(t)
	fx.srv.Statuses = []testrail.Status{{ID: 1, Name: "passed"}}

	_, err := New(fx.srv, Options{}).Publish(context.Background(), target(), shopRegistry())
	assert.ErrorContains(t, err, `status "failed"`)
}
