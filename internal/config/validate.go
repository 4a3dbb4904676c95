package config

import "net/url"

// Mode selects which phases a run performs.
type Mode uint8

const (
	// ModeExport exports scenarios as cases before running.
	ModeExport Mode = 1 << iota
	// ModePublish publishes results after running.
	ModePublish
)

// Has reports whether m includes other.
func (m Mode) Has(other Mode) bool {
	return m&other != 0
}

// Validate checks the settings required by mode.
func Validate(cfg *Config, mode Mode) error {
	collector := &issueCollector{}
	validateTestRail(cfg.TestRail, collector)
	if mode.Has(ModeExport) && len(cfg.Export.Features) == 0 {
		collector.add("export.features", "at least one feature path is required")
	}
	if mode.Has(ModePublish) {
		collector.requireID("publish.plan_id", cfg.Publish.PlanID, "plan")
		collector.requireText("publish.configuration", cfg.Publish.Configuration)
	}
	return collector.result()
}

func validateTestRail(cfg TestRailConfig, collector *issueCollector) {
	if collector.requireText("testrail.url", cfg.URL) {
		validateURL(cfg.URL, collector.add)
	}
	collector.requireText("testrail.email", cfg.Email)
	collector.requireText("testrail.key", cfg.Key)
	collector.requireID("testrail.project_id", cfg.ProjectID, "project")
	if cfg.Timeout < 0 {
		collector.add("testrail.timeout", "must not be negative")
	}
}

func validateURL(raw string, add issueAdder) {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		add("testrail.url", "must be an absolute http(s) URL")
	}
}
