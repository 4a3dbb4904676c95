package cucumber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCucumberJSONStripsNoise(t *testing.T) {
	output := "\x1b[32mrunning\x1b[0m\n" + `[{"uri":"features/shop.feature","name":"Shop - Checkout","elements":[
	{"name":"Buy apples","keyword":"Scenario","type":"scenario","line":4,
	 "tags":[{"name":"@smoke","line":3}],
	 "steps":[{"keyword":"Given ","name":"a basket","line":5,"result":{"status":"passed"}},
	          {"keyword":"Then ","name":"it is paid","line":6,"result":{"status":"failed","error_message":"boom"}}]}]}]`

	features, err := ParseCucumberJSON([]byte(output))
	require.NoError(t, err)
	require.Len(t, features, 1)
	element := features[0].Elements[0]
	assert.Equal(t, 4, element.Line)
	assert.Equal(t, "@smoke", element.Tags[0].Name)
	assert.False(t, element.Steps[0].Result.Failed())
	assert.True(t, element.Steps[1].Result.Failed())
	assert.Equal(t, "boom", element.Steps[1].Result.ErrorMessage)
}

func TestCukeResultFailedStatuses(t *testing.T) {
	for status, want := range map[string]bool{
		"passed":    false,
		"skipped":   false,
		"failed":    true,
		"undefined": true,
		"pending":   true,
		"Ambiguous": true,
	} {
		assert.Equal(t, want, CukeResult{Status: status}.Failed(), status)
	}
}

func TestParseCucumberJSONInvalid(t *testing.T) {
	_, err := ParseCucumberJSON([]byte("no json here"))
	assert.Error(t, err)
}
