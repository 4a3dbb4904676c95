package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override file values.
const (
	EnvURL           = "TESTRAIL_URL"
	EnvEmail         = "TESTRAIL_EMAIL"
	EnvKey           = "TESTRAIL_KEY"
	EnvProjectID     = "TESTRAIL_PROJECT_ID"
	EnvJiraKey       = "JIRA_PROJECT_KEY"
	EnvPlanID        = "TESTRAIL_PLAN_ID"
	EnvConfiguration = "TESTRAIL_CONFIGURATION"
)

// DotEnvFileName is loaded from the config directory when present.
const DotEnvFileName = ".env"

// LookupFunc reads an environment variable.
type LookupFunc func(key string) (string, bool)

// LoadDotEnv loads dir/.env into the process environment. Variables that
// are already set keep their value. A missing file is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, DotEnvFileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with the environment variables that are set.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	collector := &issueCollector{}
	setString := func(key string, target *string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}
	setInt := func(key string, target *int) {
		value, ok := lookup(key)
		if !ok || strings.TrimSpace(value) == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			collector.add(key, fmt.Sprintf("must be an integer, got %q", value))
			return
		}
		*target = n
	}

	setString(EnvURL, &cfg.TestRail.URL)
	setString(EnvEmail, &cfg.TestRail.Email)
	setString(EnvKey, &cfg.TestRail.Key)
	setInt(EnvProjectID, &cfg.TestRail.ProjectID)
	setString(EnvJiraKey, &cfg.Jira.ProjectKey)
	setInt(EnvPlanID, &cfg.Publish.PlanID)
	setString(EnvConfiguration, &cfg.Publish.Configuration)
	return collector.result()
}
