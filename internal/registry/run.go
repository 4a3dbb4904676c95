package registry

import "featurerail/internal/cucumber"

// StepState is the outcome of one executed step.
type StepState int

const (
	// StepBlocked marks a step that never ran because an earlier one failed.
	StepBlocked StepState = iota
	StepPassed
	StepFailed
)

// String returns the status name used by the remote service.
func (s StepState) String() string {
	switch s {
	case StepPassed:
		return "passed"
	case StepFailed:
		return "failed"
	default:
		return "blocked"
	}
}

// StepOutcome pairs a step definition with its outcome.
type StepOutcome struct {
	Step      *cucumber.Step
	State     StepState
	Exception string
}

// ScenarioRun is the recorded outcome of one executed scenario instance.
type ScenarioRun struct {
	Suite     string
	Feature   string
	Title     string
	Tags      []string
	DataSet   *cucumber.Row
	Failed    bool
	Exception string
	Steps     []StepOutcome
}

// FailedStep returns the index of the failing step, or -1.
func (r ScenarioRun) FailedStep() int {
	for i, step := range r.Steps {
		if step.State == StepFailed {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy. Step definitions are copied too so later
// changes to the source feature do not reach recorded runs.
func (r ScenarioRun) Clone() ScenarioRun {
	out := r
	out.Tags = append([]string(nil), r.Tags...)
	if r.DataSet != nil {
		row := cucumber.Row{
			Keys:     append([]string(nil), r.DataSet.Keys...),
			Values:   append([]string(nil), r.DataSet.Values...),
			Location: r.DataSet.Location,
		}
		out.DataSet = &row
	}
	out.Steps = make([]StepOutcome, len(r.Steps))
	for i, outcome := range r.Steps {
		out.Steps[i] = outcome
		if outcome.Step != nil {
			step := *outcome.Step
			if step.Table != nil {
				step.Table = make([][]string, len(outcome.Step.Table))
				for j, cells := range outcome.Step.Table {
					step.Table[j] = append([]string(nil), cells...)
				}
			}
			out.Steps[i].Step = &step
		}
	}
	return out
}
