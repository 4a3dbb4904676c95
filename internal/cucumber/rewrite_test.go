package cucumber

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func writeFeature(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.feature")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRewriteLineUntaggedScenario(t *testing.T) {
	path := writeFeature(t, "Feature: Shop - Checkout\n\n  Scenario: Buy apples\n    Given a basket\n")

	require.NoError(t, RewriteLine(path, 3, 3, "@TR-C482 \n  "))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	goldie.New(t).Assert(t, "rewrite_untagged", got)
}

func TestRewriteLineTaggedScenario(t *testing.T) {
	path := writeFeature(t, "Feature: Shop - Checkout\n\n  @smoke\n  Scenario: Buy apples\n    Given a basket\r\n")

	require.NoError(t, RewriteLine(path, 3, 3, "@TR-C482 @TR-C483 "))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	goldie.New(t).Assert(t, "rewrite_tagged", got)
}

func TestRewriteLineOutOfRange(t *testing.T) {
	body := "Feature: Shop\n"
	path := writeFeature(t, body)

	require.Error(t, RewriteLine(path, 5, 1, "@TR-C1 "))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, body, string(got))
}
