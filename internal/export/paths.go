package export

import (
	"context"

	"featurerail/internal/cucumber"
)

// ExportPaths parses the feature files found under entries and synchronizes them.
func (s *Synchronizer) ExportPaths(ctx context.Context, root string, entries []string) (Summary, error) {
	features, err := cucumber.LoadFeatures(root, entries)
	if err != nil {
		return Summary{}, err
	}
	return s.SyncAll(ctx, features)
}
