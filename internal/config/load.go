package config

import (
	"fmt"
	"os"
)

// LoadOptions controls how a config is assembled.
type LoadOptions struct {
	// Path is the config file. Empty means no file.
	Path string
	// Lookup reads environment variables; os.LookupEnv when nil.
	Lookup LookupFunc
	// SkipDotEnv disables loading .env next to the config file.
	SkipDotEnv bool
}

// Load reads the config file, applies the environment and normalizes the
// result. It does not validate; callers validate for the mode they run in.
func Load(opts LoadOptions) (Config, error) {
	var cfg Config
	if opts.Path != "" {
		data, err := os.ReadFile(opts.Path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if cfg, err = ParseConfig(data); err != nil {
			return Config{}, err
		}
		if !opts.SkipDotEnv {
			if err := LoadDotEnv(RootFromConfigPath(opts.Path)); err != nil {
				return Config{}, err
			}
		}
	} else if !opts.SkipDotEnv {
		if err := LoadDotEnv("."); err != nil {
			return Config{}, err
		}
	}
	if err := ApplyEnv(&cfg, opts.Lookup); err != nil {
		return Config{}, err
	}
	Normalize(&cfg)
	return cfg, nil
}
