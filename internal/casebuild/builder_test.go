package casebuild

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featurerail/internal/cucumber"
	"featurerail/internal/testrail"
	"featurerail/internal/testrail/fake"
)

const checkoutFeature = `@SHOP-1 @nondestructive @web
Feature: Shop - Checkout

  Background:
    Given a logged in customer

  @smoke @automated @SHOP-7 @fruit
  Scenario: Buy apples
    Given a basket with apples
    When the customer pays
      | method | amount |
      | card   | 10     |

  @regression @stencil_automated
  Scenario Outline: Buy <fruit>
    Given a basket with <fruit>

    Examples:
      | fruit | price |
      | pears | 3     |
`

func parse(t *testing.T) *cucumber.Feature {
	t.Helper()
	feature, err := cucumber.ParseFeature(strings.NewReader(checkoutFeature), "checkout.feature")
	require.NoError(t, err)
	return feature
}

func build(t *testing.T, b *Builder, feature *cucumber.Feature, scenario int, row int) testrail.Case {
	t.Helper()
	instance := feature.Scenarios[scenario].Expand()[row]
	c, err := b.Build(context.Background(), Input{
		Feature:       feature,
		Instance:      instance,
		SuiteID:       3,
		SectionID:     5,
		Preconditions: Preconditions(instance.Scenario.Background),
	})
	require.NoError(t, err)
	return c
}

func TestBuildPlainScenario(t *testing.T) {
	feature := parse(t)
	got := build(t, NewBuilder(fake.New(), 1, "SHOP"), feature, 0, 0)

	want := testrail.Case{
		Title:                "Buy apples",
		SuiteID:              3,
		SectionID:            5,
		PriorityID:           4,
		TypeID:               6,
		TemplateID:           2,
		Estimate:             "10m",
		Refs:                 "SHOP-1, SHOP-7",
		CustomTags:           "@smoke, @fruit, @web",
		CustomAutomationType: AutomationAutomated,
		CustomPreconds:       "**Given:** a logged in customer",
		CustomStepsSeparated: []testrail.CaseStep{
			{Content: "**Given:** a logged in customer"},
			{Content: "**Given:** a basket with apples"},
			{Content: "**When:** the customer pays\n*Data Table*\n|method|amount|\n|card|10|\n"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("case mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildExampleRow(t *testing.T) {
	feature := parse(t)
	got := build(t, NewBuilder(fake.New(), 1, "SHOP"), feature, 1, 0)

	assert.Equal(t, "Buy pears", got.Title)
	assert.Equal(t, 2, got.PriorityID)
	assert.Equal(t, AutomationStencil, got.CustomAutomationType)
	assert.Equal(t, "@regression, @web", got.CustomTags)
	require.NotNil(t, got.CustomDataSet)
	assert.Equal(t, "{\n    \"fruit\": \"pears\",\n    \"price\": \"3\"\n}", *got.CustomDataSet)
	assert.Equal(t, "**Given:** a basket with pears", got.CustomStepsSeparated[1].Content)
}

func TestBuildIsDeterministic(t *testing.T) {
	feature := parse(t)
	remote := fake.New()

	first, err := json.Marshal(build(t, NewBuilder(remote, 1, "SHOP"), feature, 1, 0))
	require.NoError(t, err)
	second, err := json.Marshal(build(t, NewBuilder(remote, 1, "SHOP"), feature, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestBuilderLoadsLookupsOnce(t *testing.T) {
	feature := parse(t)
	remote := fake.New()
	b := NewBuilder(remote, 1, "SHOP")

	build(t, b, feature, 0, 0)
	build(t, b, feature, 1, 0)
	assert.Equal(t, 1, remote.Count("GetPriorities"))
	assert.Equal(t, 1, remote.Count("GetCaseTypes"))
	assert.Equal(t, 1, remote.Count("GetTemplates"))
}

func TestPriorityName(t *testing.T) {
	cases := []struct {
		tags []string
		want string
	}{
		{[]string{"@regression", "@smoke"}, "Critical"},
		{[]string{"@sanity_check"}, "High"},
		{[]string{"@regression"}, "Medium"},
		{[]string{"@wip"}, "Low"},
		{nil, "Low"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PriorityName(tc.tags), "%v", tc.tags)
	}
}

func TestAutomationType(t *testing.T) {
	assert.Equal(t, AutomationStencil, AutomationType([]string{"@stencil_automated"}))
	assert.Equal(t, AutomationAutomated, AutomationType([]string{"@automated"}))
	assert.Equal(t, AutomationManual, AutomationType([]string{"@manual"}))
	assert.Equal(t, AutomationManual, AutomationType(nil))
}

func TestCustomTagsExcludesIdentifierAndReferenceTags(t *testing.T) {
	b := NewBuilder(fake.New(), 1, "SHOP")
	tags := b.CustomTags([]string{"@SHOP-3", "@nondestructive", "@ui"}, []string{"@TR-C4", "@manual", "@fast"})
	assert.Equal(t, []string{"@fast", "@ui"}, tags)
}

func TestRefsWithoutProjectKey(t *testing.T) {
	b := NewBuilder(fake.New(), 1, "")
	assert.Equal(t, "", b.Refs([]string{"@SHOP-3"}, []string{"@A-1"}))
	assert.Equal(t, []string{"@SHOP-3"}, b.CustomTags([]string{"@SHOP-3"}, nil))
}
