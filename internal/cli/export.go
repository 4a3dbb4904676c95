package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"featurerail/internal/config"
)

func newExportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [paths...]",
		Short: "Export scenarios as TestRail cases",
		Long: `Export creates a case for every scenario (one per example row of an outline)
and writes the new case identifiers into the feature files as @TR-C<id> tags.
Scenarios that already carry identifier tags update their cases instead.

Paths may be files, directories or globs relative to the working directory.
Without paths the export.features entries of the config file are used,
relative to the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				paths, err := absolutePaths(args)
				if err != nil {
					return err
				}
				env.cfg.Export.Features = paths
			}
			s := opts.newSession(env, config.ModeExport)
			if err := s.Start(cmd.Context()); err != nil {
				return err
			}
			_, err = s.Finish(cmd.Context())
			return err
		},
	}
}

// absolutePaths anchors command-line paths to the working directory, since
// the session resolves relative entries against the config directory.
func absolutePaths(args []string) ([]string, error) {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		path, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve path %q: %w", arg, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
