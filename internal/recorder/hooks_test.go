package recorder

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featurerail/internal/cucumber"
	"featurerail/internal/registry"
)

func memorySource(contents map[string]string) FeatureSource {
	return func(uri string) (*cucumber.Feature, error) {
		text, ok := contents[uri]
		if !ok {
			return nil, fmt.Errorf("unknown feature %s", uri)
		}
		return cucumber.ParseFeature(strings.NewReader(text), uri)
	}
}

func TestHooksRecordGodogRun(t *testing.T) {
	reg := registry.New()
	hooks := NewHooks(New(reg, nil), memorySource(map[string]string{"shop.feature": shopFeature}), nil)

	suite := godog.TestSuite{
		Name: "recorder",
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			sc.Step(`^a logged in customer$`, func() error { return nil })
			sc.Step(`^a basket with (\w+)$`, func(string) error { return nil })
			sc.Step(`^the customer pays$`, func() error { return errors.New("card declined") })
			sc.Step(`^the order is confirmed$`, func() error { return nil })
			sc.Step(`^the total is (\d+)$`, func(total int) error {
				if total == 5 {
					return errors.New("wrong total")
				}
				return nil
			})
			hooks.Register(sc)
		},
		Options: &godog.Options{
			Format:          "progress",
			Output:          io.Discard,
			FeatureContents: []godog.Feature{{Name: "shop.feature", Contents: []byte(shopFeature)}},
		},
	}
	suite.Run()

	runs := map[string]registry.ScenarioRun{}
	for _, run := range reg.Runs("Shop") {
		runs[run.Title] = run
	}
	require.Len(t, runs, 3)

	apples := runs["Buy apples"]
	assert.True(t, apples.Failed)
	assert.Contains(t, apples.Exception, "card declined")
	assert.Equal(t, []registry.StepState{registry.StepPassed, registry.StepPassed, registry.StepFailed, registry.StepBlocked}, states(apples))

	pears := runs["Buy pears"]
	assert.False(t, pears.Failed)
	assert.Equal(t, []registry.StepState{registry.StepPassed, registry.StepPassed, registry.StepPassed}, states(pears))

	grapes := runs["Buy grapes"]
	assert.True(t, grapes.Failed)
	assert.Contains(t, grapes.Exception, "wrong total")
	assert.Equal(t, 2, grapes.FailedStep())
	require.NotNil(t, grapes.DataSet)
	assert.Equal(t, "grapes", grapes.DataSet.Values[0])
}

func TestHooksSkipUnknownFeature(t *testing.T) {
	reg := registry.New()
	hooks := NewHooks(New(reg, nil), memorySource(map[string]string{}), nil)

	suite := godog.TestSuite{
		Name: "unknown",
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			sc.Step(`^.*$`, func() error { return nil })
			hooks.Register(sc)
		},
		Options: &godog.Options{
			Format:          "progress",
			Output:          io.Discard,
			FeatureContents: []godog.Feature{{Name: "shop.feature", Contents: []byte(shopFeature)}},
		},
	}
	assert.Equal(t, 0, suite.Run())
	assert.Zero(t, reg.Len())
}
