package recorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featurerail/internal/cucumber"
	"featurerail/internal/registry"
)

const shopReport = `[{"uri":"shop.feature","name":"Shop - Checkout","elements":[
  {"name":"Buy apples","type":"scenario","line":7,"steps":[
    {"name":"a logged in customer","result":{"status":"passed"}},
    {"name":"a basket with apples","result":{"status":"passed"}},
    {"name":"the customer pays","result":{"status":"failed","error_message":"first try"}},
    {"name":"the order is confirmed","result":{"status":"skipped"}}]},
  {"name":"Buy apples","type":"scenario","line":7,"steps":[
    {"name":"a logged in customer","result":{"status":"passed"}},
    {"name":"a basket with apples","result":{"status":"passed"}},
    {"name":"the customer pays","result":{"status":"passed"}},
    {"name":"the order is confirmed","result":{"status":"undefined"}}]},
  {"name":"Buy grapes","type":"scenario","line":19,"steps":[
    {"name":"a logged in customer","result":{"status":"passed"}},
    {"name":"a basket with grapes","result":{"status":"passed"}},
    {"name":"the total is 5","result":{"status":"passed"}}]},
  {"name":"Ghost","type":"scenario","line":99,"steps":[]}
]}]`

func TestImportCucumberJSON(t *testing.T) {
	reports, err := cucumber.ParseCucumberJSON([]byte(shopReport))
	require.NoError(t, err)

	reg := registry.New()
	summary, err := ImportCucumberJSON(reports, memorySource(map[string]string{"shop.feature": shopFeature}), New(reg, nil))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Recorded)
	assert.Equal(t, []string{"shop.feature:99 Ghost"}, summary.Unmatched)

	runs := reg.Runs("Shop")
	require.Len(t, runs, 2)
	assert.Equal(t, "Buy apples", runs[0].Title)
	assert.True(t, runs[0].Failed)
	assert.Equal(t, NoErrorMessage, runs[0].Exception)
	assert.Equal(t, 3, runs[0].FailedStep())

	assert.Equal(t, "Buy grapes", runs[1].Title)
	assert.False(t, runs[1].Failed)
	assert.Equal(t, []registry.StepState{registry.StepPassed, registry.StepPassed, registry.StepPassed}, states(runs[1]))
}

func TestImportCucumberJSONUnknownFeature(t *testing.T) {
	reports := []cucumber.CukeFeatureJSON{{URI: "missing.feature"}}
	_, err := ImportCucumberJSON(reports, memorySource(nil), New(registry.New(), nil))
	assert.Error(t, err)
}
