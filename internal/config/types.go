package config

import "time"

// Config is the featurerail configuration file.
type Config struct {
	TestRail TestRailConfig `yaml:"testrail"`
	Jira     JiraConfig     `yaml:"jira"`
	Export   ExportConfig   `yaml:"export"`
	Publish  PublishConfig  `yaml:"publish"`
}

// TestRailConfig holds the connection settings.
type TestRailConfig struct {
	URL       string        `yaml:"url"`
	Email     string        `yaml:"email"`
	Key       string        `yaml:"key"`
	ProjectID int           `yaml:"project_id"`
	Timeout   time.Duration `yaml:"timeout"`
}

// JiraConfig holds the issue tracker settings used for case references.
type JiraConfig struct {
	ProjectKey string `yaml:"project_key"`
}

// ExportConfig lists the feature files, directories or globs to export.
type ExportConfig struct {
	Features []string `yaml:"features"`
}

// PublishConfig selects the plan and configuration results go to.
type PublishConfig struct {
	PlanID        int    `yaml:"plan_id"`
	Configuration string `yaml:"configuration"`
}
