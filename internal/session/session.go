// Package session ties featurerail into a godog test run: it validates the
// remote project when the run starts, records scenario outcomes while it
// runs and exports cases or publishes results when it finishes.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"featurerail/internal/config"
	"featurerail/internal/cucumber"
	"featurerail/internal/export"
	"featurerail/internal/publish"
	"featurerail/internal/recorder"
	"featurerail/internal/registry"
	"featurerail/internal/testrail"
)

// Modes a session can run in. Both may be combined or left off.
const (
	ModeExport  = config.ModeExport
	ModePublish = config.ModePublish
)

// excludeAll is a tag expression no scenario satisfies.
const excludeAll = "@featurerail-export && ~@featurerail-export"

// ErrNotStarted is returned by Finish when Start did not succeed.
var ErrNotStarted = errors.New("session not started")

// Reporter receives operator-facing events of both phases.
type Reporter interface {
	export.Reporter
	publish.Reporter
	ExportSummary(export.Summary)
	PublishSummary(publish.Summary)
}

// Options configures a Session.
type Options struct {
	Mode config.Mode
	// Root is the directory feature paths and runner URIs are relative to.
	Root string
	// Source resolves runner URIs to parsed features; files under Root when nil.
	Source   recorder.FeatureSource
	Reporter Reporter
}

// Result describes what Finish did.
type Result struct {
	Export  export.Summary
	Publish publish.Summary
}

// Session is one test run.
type Session struct {
	id       string
	cfg      config.Config
	client   testrail.API
	logger   *zap.Logger
	mode     config.Mode
	root     string
	reporter Reporter
	registry *registry.Registry
	recorder *recorder.Recorder
	hooks    *recorder.Hooks
	source   recorder.FeatureSource
	started  bool
}

// New creates a session. The session id is attached to every log line.
func New(cfg config.Config, client testrail.API, logger *zap.Logger, opts Options) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	logger = logger.With(zap.String("session", id))
	root := opts.Root
	if root == "" {
		root = "."
	}
	source := opts.Source
	if source == nil {
		source = recorder.FileSource(root)
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}
	reg := registry.New()
	rec := recorder.New(reg, logger)
	return &Session{
		id:       id,
		cfg:      cfg,
		client:   client,
		logger:   logger,
		mode:     opts.Mode,
		root:     root,
		reporter: reporter,
		registry: reg,
		recorder: rec,
		hooks:    recorder.NewHooks(rec, source, logger),
		source:   source,
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Mode returns the enabled phases.
func (s *Session) Mode() config.Mode {
	return s.mode
}

// Registry returns the runs recorded so far.
func (s *Session) Registry() *registry.Registry {
	return s.registry
}

// Start validates the configuration and the remote project unless no phase
// is enabled. It must succeed before Finish.
func (s *Session) Start(ctx context.Context) error {
	if s.mode != 0 {
		if err := s.Check(ctx); err != nil {
			return err
		}
	}
	s.started = true
	return nil
}

// Check validates the configuration for the session mode and reads the
// project. In publish mode the configured configuration names must exist in
// the project. Check only reads from the remote service.
func (s *Session) Check(ctx context.Context) error {
	if err := config.Validate(&s.cfg, s.mode); err != nil {
		return err
	}
	projectID := s.cfg.TestRail.ProjectID
	project, err := s.client.GetProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("get project %d: %w", projectID, err)
	}
	s.logger.Info("session started",
		zap.String("project", project.Name),
		zap.Bool("export", s.mode.Has(ModeExport)),
		zap.Bool("publish", s.mode.Has(ModePublish)))

	if s.mode.Has(ModePublish) {
		return s.checkConfiguration(ctx, projectID)
	}
	return nil
}

func (s *Session) checkConfiguration(ctx context.Context, projectID int) error {
	groups, err := s.client.GetConfigs(ctx, projectID)
	if err != nil {
		return fmt.Errorf("get configurations: %w", err)
	}
	configs := testrail.FlattenConfigs(groups)
	available := make([]string, 0, len(configs))
	known := map[string]bool{}
	for _, cfg := range configs {
		available = append(available, cfg.Name)
		known[cfg.Name] = true
	}
	name := s.cfg.Publish.Configuration
	for _, part := range strings.Split(name, publish.ConfigurationSeparator) {
		if !known[part] {
			return &config.ConfigurationError{Name: name, Available: available}
		}
	}
	return nil
}

// ConfigureOptions adjusts godog options. Exporting does not execute
// scenarios, so every scenario is filtered out.
func (s *Session) ConfigureOptions(opts *godog.Options) {
	if s.mode.Has(ModeExport) {
		opts.Tags = excludeAll
	}
}

// InitializeScenario attaches the recording hooks when publishing.
func (s *Session) InitializeScenario(sc *godog.ScenarioContext) {
	if s.mode.Has(ModePublish) {
		s.hooks.Register(sc)
	}
}

// ImportReport records the runs of a cucumber JSON report instead of a live run.
func (s *Session) ImportReport(reports []cucumber.CukeFeatureJSON) (recorder.ImportSummary, error) {
	summary, err := recorder.ImportCucumberJSON(reports, s.source, s.recorder)
	if err != nil {
		return summary, err
	}
	for _, missing := range summary.Unmatched {
		s.logger.Warn("report element not found in features", zap.String("element", missing))
	}
	return summary, nil
}

// Finish exports cases and publishes recorded results as enabled.
func (s *Session) Finish(ctx context.Context) (Result, error) {
	var result Result
	if !s.started {
		return result, ErrNotStarted
	}
	if s.mode.Has(ModeExport) {
		synchronizer := export.NewSynchronizer(s.client, export.Options{
			ProjectID:  s.cfg.TestRail.ProjectID,
			ProjectKey: s.cfg.Jira.ProjectKey,
			Reporter:   s.reporter,
			Logger:     s.logger,
		})
		summary, err := synchronizer.ExportPaths(ctx, s.root, s.cfg.Export.Features)
		result.Export = summary
		s.reporter.ExportSummary(summary)
		if err != nil {
			return result, fmt.Errorf("export test cases: %w", err)
		}
	}
	if s.mode.Has(ModePublish) {
		s.logger.Info("publishing results", zap.Int("recorded", s.registry.Len()))
		publisher := publish.New(s.client, publish.Options{Reporter: s.reporter, Logger: s.logger})
		summary, err := publisher.Publish(ctx, publish.Target{
			PlanID:            s.cfg.Publish.PlanID,
			ProjectID:         s.cfg.TestRail.ProjectID,
			ConfigurationName: s.cfg.Publish.Configuration,
		}, s.registry)
		result.Publish = summary
		if err != nil {
			return result, fmt.Errorf("publish results: %w", err)
		}
		s.reporter.PublishSummary(summary)
	}
	return result, nil
}

type nopReporter struct{}

func (nopReporter) Created(string, []int)          {}
func (nopReporter) Updated(string, []int)          {}
func (nopReporter) Skipped(string, error)          {}
func (nopReporter) EntryAdded(string, string)      {}
func (nopReporter) Unmatched(string, string)       {}
func (nopReporter) Published(string, int)          {}
func (nopReporter) ExportSummary(export.Summary)   {}
func (nopReporter) PublishSummary(publish.Summary) {}
