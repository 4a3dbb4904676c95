package recorder

import (
	"fmt"

	"featurerail/internal/cucumber"
)

// ImportSummary describes a cucumber report import.
type ImportSummary struct {
	Recorded  int
	Unmatched []string
}

// ImportCucumberJSON replays a cucumber JSON report through rec. Elements are
// matched to feature instances by line. When an element appears more than once
// for the same line, earlier occurrences are treated as retried attempts.
func ImportCucumberJSON(reports []cucumber.CukeFeatureJSON, source FeatureSource, rec *Recorder) (ImportSummary, error) {
	var summary ImportSummary
	for _, report := range reports {
		feature, err := source(report.URI)
		if err != nil {
			return summary, err
		}
		last := map[int]int{}
		for i, element := range report.Elements {
			if element.Type != "background" {
				last[element.Line] = i
			}
		}
		for i, element := range report.Elements {
			if element.Type == "background" {
				continue
			}
			instance, ok := feature.InstanceAtLine(element.Line)
			if !ok {
				summary.Unmatched = append(summary.Unmatched, fmt.Sprintf("%s:%d %s", report.URI, element.Line, element.Name))
				continue
			}
			execution := rec.Start(feature, instance)
			for index, step := range element.Steps {
				if step.Result.Failed() {
					execution.StepFailed(index, step.Result.ErrorMessage)
					break
				}
			}
			if execution.Complete(last[element.Line] == i) {
				summary.Recorded++
			}
		}
	}
	return summary, nil
}
