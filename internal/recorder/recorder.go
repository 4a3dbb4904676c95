// Package recorder captures per-scenario outcomes during a test run and
// stores them in a registry for later publishing.
package recorder

import (
	"go.uber.org/zap"

	"featurerail/internal/cucumber"
	"featurerail/internal/registry"
)

// NoErrorMessage is recorded when a step fails without a message.
const NoErrorMessage = "no error message"

// Recorder starts executions and stores completed ones in a registry.
type Recorder struct {
	registry *registry.Registry
	logger   *zap.Logger
}

// New returns a recorder writing into reg.
func New(reg *registry.Registry, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{registry: reg, logger: logger}
}

// Registry returns the registry completed runs are stored in.
func (r *Recorder) Registry() *registry.Registry {
	return r.registry
}

// Start begins one attempt of a scenario instance.
func (r *Recorder) Start(feature *cucumber.Feature, instance cucumber.Instance) *Execution {
	all := instance.AllSteps()
	steps := make([]registry.StepOutcome, len(all))
	for i := range all {
		step := all[i]
		steps[i] = registry.StepOutcome{Step: &step, State: registry.StepPassed}
	}
	return &Execution{
		recorder: r,
		feature:  feature,
		instance: instance,
		steps:    steps,
	}
}

// Execution is one attempt of a scenario instance.
type Execution struct {
	recorder  *Recorder
	feature   *cucumber.Feature
	instance  cucumber.Instance
	steps     []registry.StepOutcome
	failed    bool
	exception string
	done      bool
}

// Failed reports whether the attempt has failed so far.
func (e *Execution) Failed() bool {
	return e.failed
}

// StepFailed marks step index as failed. Earlier steps become passed and
// later ones blocked.
func (e *Execution) StepFailed(index int, message string) {
	if message == "" {
		message = NoErrorMessage
	}
	if index < 0 || index >= len(e.steps) {
		e.recorder.logger.Warn("failed step outside scenario",
			zap.String("scenario", e.instance.Title),
			zap.Int("index", index),
			zap.Int("steps", len(e.steps)))
		e.Fail(message)
		return
	}
	for i, state := range DeriveStates(len(e.steps), index) {
		e.steps[i].State = state
		e.steps[i].Exception = ""
	}
	e.steps[index].Exception = message
	e.failed = true
	e.exception = message
}

// Fail marks the scenario failed without attributing the failure to a step.
func (e *Execution) Fail(message string) {
	if message == "" {
		message = NoErrorMessage
	}
	e.failed = true
	e.exception = message
}

// Complete ends the attempt. A failed attempt that is not final is reset and
// discarded so the next attempt starts clean. It reports whether the run was
// stored.
func (e *Execution) Complete(final bool) bool {
	if e.done {
		return false
	}
	if e.failed && !final {
		e.reset()
		e.recorder.logger.Debug("discarding failed attempt",
			zap.String("scenario", e.instance.Title))
		return false
	}
	e.done = true
	e.recorder.registry.Append(e.snapshot())
	return true
}

func (e *Execution) reset() {
	e.failed = false
	e.exception = ""
	for i := range e.steps {
		e.steps[i].State = registry.StepPassed
		e.steps[i].Exception = ""
	}
}

func (e *Execution) snapshot() registry.ScenarioRun {
	return registry.ScenarioRun{
		Suite:     e.feature.SuiteName(),
		Feature:   e.feature.Name,
		Title:     e.instance.Title,
		Tags:      e.instance.Scenario.Tags,
		DataSet:   e.instance.Row,
		Failed:    e.failed,
		Exception: e.exception,
		Steps:     e.steps,
	}
}

// DeriveStates returns the states of n steps when the step at failed
// failed: passed before it, failed at it, blocked after it. A negative
// failed index means every step passed.
func DeriveStates(n, failed int) []registry.StepState {
	states := make([]registry.StepState, n)
	for i := range states {
		switch {
		case failed < 0 || i < failed:
			states[i] = registry.StepPassed
		case i == failed:
			states[i] = registry.StepFailed
		default:
			states[i] = registry.StepBlocked
		}
	}
	return states
}
