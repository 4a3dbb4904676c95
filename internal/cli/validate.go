package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"featurerail/internal/config"
)

func newValidateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the config and the TestRail project",
		Long: `Validate checks the connection settings, then reads the project and, when
a publish configuration is set, checks that it exists in the project.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.load(cmd)
			if err != nil {
				return err
			}
			var mode config.Mode
			if len(env.cfg.Export.Features) > 0 {
				mode |= config.ModeExport
			}
			if env.cfg.Publish.PlanID != 0 || env.cfg.Publish.Configuration != "" {
				mode |= config.ModePublish
			}
			if err := opts.newSession(env, mode).Check(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Config OK")
			return nil
		},
	}
}
