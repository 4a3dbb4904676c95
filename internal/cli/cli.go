// Package cli implements the featurerail command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"featurerail/internal/config"
	"featurerail/internal/testrail"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Deps are the collaborators commands are built with.
type Deps struct {
	NewClient func(cfg config.Config, logger *zap.Logger) testrail.API
	Lookup    config.LookupFunc
}

func defaultDeps() Deps {
	return Deps{NewClient: newHTTPClient}
}

func newHTTPClient(cfg config.Config, logger *zap.Logger) testrail.API {
	return testrail.New(cfg.TestRail.URL, cfg.TestRail.Email, cfg.TestRail.Key,
		testrail.WithTimeout(cfg.TestRail.Timeout),
		testrail.WithLogger(logger))
}

// Run executes the command line and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	return run(args, stdout, stderr, defaultDeps())
}

func run(args []string, stdout, stderr io.Writer, deps Deps) int {
	root := NewRootCommand(deps)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if len(args) == 0 {
		_ = root.Usage()
		return ExitUsage
	}
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return ExitOK
	}
	if isUsageError(err) {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		root.SetOut(stderr)
		_ = root.Usage()
		return ExitUsage
	}
	var validationErr *config.ValidationError
	if errors.As(err, &validationErr) {
		fmt.Fprintf(stderr, "Validation failed:\n%s\n", validationErr.Error())
		return ExitError
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitError
}

// usageError marks errors caused by invalid arguments or flags.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func isUsageError(err error) bool {
	var usage usageError
	if errors.As(err, &usage) {
		return true
	}
	return strings.HasPrefix(err.Error(), "unknown command") ||
		strings.HasPrefix(err.Error(), "unknown flag") ||
		strings.HasPrefix(err.Error(), "unknown shorthand flag")
}
