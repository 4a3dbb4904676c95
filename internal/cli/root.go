package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"featurerail/internal/config"
	"featurerail/internal/console"
	"featurerail/internal/session"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Color      string
	URL        string
	Email      string
	Key        string
	ProjectID  int
	JiraKey    string

	deps Deps
}

// NewRootCommand creates the featurerail root command.
func NewRootCommand(deps Deps) *cobra.Command {
	if deps.NewClient == nil {
		deps.NewClient = newHTTPClient
	}
	opts := &RootOptions{deps: deps}

	cmd := &cobra.Command{
		Use:   "featurerail",
		Short: "Synchronize Gherkin features with TestRail",
		Long: `featurerail exports Gherkin scenarios as TestRail cases, writing the case
identifiers back into the feature files, and publishes godog results to a
TestRail plan.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default: search for "+config.DefaultFileName+")")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")
	flags.StringVar(&opts.Color, "color", "auto", "color output (auto|always|never)")
	flags.StringVar(&opts.URL, "url", "", "TestRail URL")
	flags.StringVar(&opts.Email, "email", "", "TestRail user email")
	flags.StringVar(&opts.Key, "key", "", "TestRail API key")
	flags.IntVar(&opts.ProjectID, "project-id", 0, "TestRail project id")
	flags.StringVar(&opts.JiraKey, "jira-key", "", "Jira project key used for case references")

	cmd.AddCommand(newExportCommand(opts))
	cmd.AddCommand(newPublishCommand(opts))
	cmd.AddCommand(newValidateCommand(opts))
	return cmd
}

// loaded is the environment a command runs in.
type loaded struct {
	cfg     config.Config
	root    string
	logger  *zap.Logger
	console *console.Console
}

func (o *RootOptions) load(cmd *cobra.Command) (*loaded, error) {
	path := o.ConfigPath
	if path == "" {
		found, err := config.FindConfigPath("")
		switch {
		case errors.Is(err, config.ErrConfigNotFound):
		case err != nil:
			return nil, err
		default:
			path = found
		}
	}
	cfg, err := config.Load(config.LoadOptions{Path: path, Lookup: o.deps.Lookup})
	if err != nil {
		return nil, err
	}
	o.applyOverrides(cmd, &cfg)
	config.Normalize(&cfg)

	color, err := console.ResolveColor(o.Color, cmd.OutOrStdout())
	if err != nil {
		return nil, usageError{err: err}
	}
	root := "."
	if path != "" {
		root = config.RootFromConfigPath(path)
	}
	return &loaded{
		cfg:     cfg,
		root:    root,
		logger:  newLogger(cmd.ErrOrStderr(), o.Verbose),
		console: console.New(cmd.OutOrStdout(), color),
	}, nil
}

func (o *RootOptions) applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.TestRail.URL = o.URL
	}
	if flags.Changed("email") {
		cfg.TestRail.Email = o.Email
	}
	if flags.Changed("key") {
		cfg.TestRail.Key = o.Key
	}
	if flags.Changed("project-id") {
		cfg.TestRail.ProjectID = o.ProjectID
	}
	if flags.Changed("jira-key") {
		cfg.Jira.ProjectKey = o.JiraKey
	}
}

func (o *RootOptions) newSession(env *loaded, mode config.Mode) *session.Session {
	client := o.deps.NewClient(env.cfg, env.logger)
	return session.New(env.cfg, client, env.logger, session.Options{
		Mode:     mode,
		Root:     env.root,
		Reporter: env.console,
	})
}

// newLogger writes console-encoded logs to w. Warnings and errors are
// always shown; verbose enables debug output.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), level))
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError{err: fmt.Errorf("%s accepts %d arg(s), received %d", cmd.CommandPath(), n, len(args))}
		}
		return nil
	}
}
