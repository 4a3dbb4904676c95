package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"featurerail/internal/config"
	"featurerail/internal/cucumber"
)

type publishOptions struct {
	results       string
	planID        int
	configuration string
	featuresRoot  string
}

func newPublishCommand(opts *RootOptions) *cobra.Command {
	popts := &publishOptions{}
	cmd := &cobra.Command{
		Use:   "publish --results <cucumber.json>",
		Short: "Publish godog results to a TestRail plan",
		Long: `Publish reads a cucumber JSON report written by godog (--format cucumber),
matches each scenario to its feature file and submits one result per case to
the configured plan and configuration.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if popts.results == "" {
				return usageError{err: fmt.Errorf("--results is required")}
			}
			env, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("plan-id") {
				env.cfg.Publish.PlanID = popts.planID
			}
			if cmd.Flags().Changed("configuration") {
				env.cfg.Publish.Configuration = popts.configuration
			}
			if popts.featuresRoot != "" {
				env.root = popts.featuresRoot
			}

			data, err := os.ReadFile(popts.results)
			if err != nil {
				return fmt.Errorf("read results: %w", err)
			}
			reports, err := cucumber.ParseCucumberJSON(data)
			if err != nil {
				return err
			}

			s := opts.newSession(env, config.ModePublish)
			if err := s.Start(cmd.Context()); err != nil {
				return err
			}
			imported, err := s.ImportReport(reports)
			if err != nil {
				return err
			}
			for _, missing := range imported.Unmatched {
				env.console.Printf("no scenario found for %s", missing)
			}
			_, err = s.Finish(cmd.Context())
			return err
		},
	}
	cmd.Flags().StringVar(&popts.results, "results", "", "cucumber JSON report to publish")
	cmd.Flags().IntVar(&popts.planID, "plan-id", 0, "TestRail plan id")
	cmd.Flags().StringVar(&popts.configuration, "configuration", "", "configuration name, several separated by \", \"")
	cmd.Flags().StringVar(&popts.featuresRoot, "features-root", "", "directory report URIs are relative to (default: config directory)")
	return cmd
}
