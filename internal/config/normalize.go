package config

import (
	"strings"
	"time"
)

// DefaultTimeout bounds each TestRail request when none is configured.
const DefaultTimeout = 30 * time.Second

// Normalize trims values and fills defaults.
func Normalize(cfg *Config) {
	cfg.TestRail.URL = strings.TrimRight(strings.TrimSpace(cfg.TestRail.URL), "/")
	cfg.TestRail.Email = strings.TrimSpace(cfg.TestRail.Email)
	cfg.Jira.ProjectKey = strings.TrimSpace(cfg.Jira.ProjectKey)
	cfg.Publish.Configuration = strings.TrimSpace(cfg.Publish.Configuration)
	if cfg.TestRail.Timeout == 0 {
		cfg.TestRail.Timeout = DefaultTimeout
	}
	features := cfg.Export.Features[:0]
	for _, entry := range cfg.Export.Features {
		if entry = strings.TrimSpace(entry); entry != "" {
			features = append(features, entry)
		}
	}
	cfg.Export.Features = features
}
