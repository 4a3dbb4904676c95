package cucumber

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// CukeFeatureJSON matches the cucumber JSON report for a feature.
type CukeFeatureJSON struct {
	URI      string        `json:"uri"`
	Name     string        `json:"name"`
	Elements []CukeElement `json:"elements"`
}

// CukeElement describes a scenario element. For outlines Line is the example row line.
type CukeElement struct {
	Name    string     `json:"name"`
	Keyword string     `json:"keyword"`
	Type    string     `json:"type"`
	Line    int        `json:"line"`
	Tags    []CukeTag  `json:"tags"`
	Steps   []CukeStep `json:"steps"`
}

// CukeTag is a tag attached to an element.
type CukeTag struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

// CukeStep captures one executed step.
type CukeStep struct {
	Keyword string     `json:"keyword"`
	Name    string     `json:"name"`
	Line    int        `json:"line"`
	Result  CukeResult `json:"result"`
}

// CukeResult contains a step execution status.
type CukeResult struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Failed reports whether the step counts as a failure.
func (r CukeResult) Failed() bool {
	switch strings.ToLower(strings.TrimSpace(r.Status)) {
	case "failed", "undefined", "pending", "ambiguous":
		return true
	default:
		return false
	}
}

// ParseCucumberJSON parses a cucumber JSON report as written by godog.
func ParseCucumberJSON(data []byte) ([]CukeFeatureJSON, error) {
	data = cleanGodogOutput(data)
	var features []CukeFeatureJSON
	if err := json.Unmarshal(data, &features); err != nil {
		return nil, fmt.Errorf("parse cucumber report: %w", err)
	}
	return features, nil
}

// InstanceAtLine finds the scenario instance declared at line, matching either
// the scenario line of a plain scenario or the example row line of an outline.
func (f *Feature) InstanceAtLine(line int) (Instance, bool) {
	for i := range f.Scenarios {
		scenario := &f.Scenarios[i]
		for _, instance := range scenario.Expand() {
			if instance.Row != nil && instance.Row.Location.Line == line {
				return instance, true
			}
			if instance.Row == nil && scenario.Location.Line == line {
				return instance, true
			}
		}
	}
	return Instance{}, false
}

// cleanGodogOutput drops colour codes and any text printed before the
// report's opening bracket.
func cleanGodogOutput(data []byte) []byte {
	stripped := bytes.TrimSpace(stripANSICodes(data))
	if start := bytes.IndexAny(stripped, "[{"); start > 0 {
		return stripped[start:]
	}
	return stripped
}

// stripANSICodes removes CSI escape sequences.
func stripANSICodes(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != 0x1b || i+1 >= len(data) || data[i+1] != '[' {
			out = append(out, data[i])
			continue
		}
		// Skip parameters up to and including the final byte.
		for i += 2; i < len(data) && (data[i] < 0x40 || data[i] > 0x7e); i++ {
		}
	}
	return out
}
