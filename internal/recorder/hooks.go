package recorder

import (
	"context"
	"sync"

	"github.com/cucumber/godog"
	"go.uber.org/zap"
)

// Hooks records godog scenario outcomes.
type Hooks struct {
	recorder *Recorder
	source   FeatureSource
	logger   *zap.Logger

	mu        sync.Mutex
	scenarios map[string]*Execution
	steps     map[string]stepRef
}

type stepRef struct {
	execution *Execution
	index     int
}

// NewHooks returns hooks that resolve pickles through source.
func NewHooks(rec *Recorder, source FeatureSource, logger *zap.Logger) *Hooks {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hooks{
		recorder:  rec,
		source:    source,
		logger:    logger,
		scenarios: map[string]*Execution{},
		steps:     map[string]stepRef{},
	}
}

// Register attaches the hooks to a scenario context.
func (h *Hooks) Register(sc *godog.ScenarioContext) {
	sc.Before(h.beforeScenario)
	sc.StepContext().After(h.afterStep)
	sc.After(h.afterScenario)
}

func (h *Hooks) beforeScenario(ctx context.Context, pickle *godog.Scenario) (context.Context, error) {
	feature, err := h.source(pickle.Uri)
	if err != nil {
		h.logger.Warn("scenario not recorded", zap.String("uri", pickle.Uri), zap.Error(err))
		return ctx, nil
	}
	texts := make([]string, len(pickle.Steps))
	for i, step := range pickle.Steps {
		texts[i] = step.Text
	}
	instance, ok := MatchInstance(feature, pickle.Name, texts)
	if !ok {
		h.logger.Warn("scenario not found in feature",
			zap.String("uri", pickle.Uri), zap.String("scenario", pickle.Name))
		return ctx, nil
	}
	execution := h.recorder.Start(feature, instance)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.scenarios[pickle.Id] = execution
	for i, step := range pickle.Steps {
		h.steps[step.Id] = stepRef{execution: execution, index: i}
	}
	return ctx, nil
}

func (h *Hooks) afterStep(ctx context.Context, st *godog.Step, status godog.StepResultStatus, err error) (context.Context, error) {
	if status == godog.StepPassed || status == godog.StepSkipped {
		return ctx, nil
	}
	h.mu.Lock()
	ref, ok := h.steps[st.Id]
	h.mu.Unlock()
	if !ok || ref.execution.Failed() {
		return ctx, nil
	}
	message := status.String()
	if err != nil {
		message = err.Error()
	}
	ref.execution.StepFailed(ref.index, message)
	return ctx, nil
}

func (h *Hooks) afterScenario(ctx context.Context, pickle *godog.Scenario, err error) (context.Context, error) {
	h.mu.Lock()
	execution, ok := h.scenarios[pickle.Id]
	delete(h.scenarios, pickle.Id)
	for _, step := range pickle.Steps {
		delete(h.steps, step.Id)
	}
	h.mu.Unlock()
	if !ok {
		return ctx, nil
	}
	if err != nil && !execution.Failed() {
		execution.Fail(err.Error())
	}
	execution.Complete(true)
	return ctx, nil
}
