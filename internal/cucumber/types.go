package cucumber

import (
	"bytes"
	"encoding/json"
	"strings"
)

// NameSeparator splits a feature name into suite, section and sub-section parts.
const NameSeparator = " - "

// Location is a 1-based position in a feature file.
type Location struct {
	Line   int
	Column int
}

// Feature is the parsed form of one .feature file.
type Feature struct {
	Path        string
	Name        string
	Description string
	Tags        []string
	Background  []Step
	Scenarios   []Scenario
	Location    Location
}

// NameComponents splits the feature name on NameSeparator and trims each part.
func (f *Feature) NameComponents() []string {
	name := strings.TrimSpace(f.Name)
	parts := strings.Split(name, NameSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// SuiteName returns the first component of the feature name.
func (f *Feature) SuiteName() string {
	return SuiteName(f.Name)
}

// SuiteName returns the suite key for a feature name.
func SuiteName(featureName string) string {
	name := strings.TrimSpace(featureName)
	if i := strings.Index(name, NameSeparator); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// Scenario is a scenario or scenario outline.
type Scenario struct {
	Name     string
	Keyword  string
	Tags     []string
	Steps    []Step
	Examples []Row
	Outline  bool
	Location Location

	// Background holds the feature and rule background steps run before Steps.
	Background []Step
}

// HasTags reports whether the scenario declares any tag.
func (s *Scenario) HasTags() bool {
	return len(s.Tags) > 0
}

// Step is a single Given/When/Then line.
type Step struct {
	Keyword  string
	Text     string
	Table    [][]string
	Location Location
}

// Row is one row of an Examples table.
type Row struct {
	Keys     []string
	Values   []string
	Location Location
}

// Map returns the row as a column-name to value mapping.
func (r Row) Map() map[string]string {
	out := make(map[string]string, len(r.Keys))
	for i, key := range r.Keys {
		out[key] = r.value(i)
	}
	return out
}

// Substitute replaces every <key> placeholder in text with the row value.
func (r Row) Substitute(text string) string {
	for i, key := range r.Keys {
		text = strings.ReplaceAll(text, "<"+key+">", r.value(i))
	}
	return text
}

// JSON renders the row as an indented JSON object keeping column order.
func (r Row) JSON() string {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, key := range r.Keys {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n    ")
		buf.Write(marshalString(key))
		buf.WriteString(": ")
		buf.Write(marshalString(r.value(i)))
	}
	if len(r.Keys) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}")
	return buf.String()
}

func (r Row) value(i int) string {
	if i < len(r.Values) {
		return r.Values[i]
	}
	return ""
}

func marshalString(value string) []byte {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(value)
	return bytes.TrimRight(buf.Bytes(), "\n")
}

// Instance is one executable expansion of a scenario.
type Instance struct {
	Scenario *Scenario
	Row      *Row
	Title    string
	Steps    []Step
}

// Expand returns one instance per example row, or a single instance for plain scenarios.
func (s *Scenario) Expand() []Instance {
	if len(s.Examples) == 0 {
		return []Instance{{Scenario: s, Title: s.Name, Steps: s.Steps}}
	}
	instances := make([]Instance, 0, len(s.Examples))
	for i := range s.Examples {
		row := s.Examples[i]
		steps := make([]Step, len(s.Steps))
		for j, step := range s.Steps {
			steps[j] = substituteStep(step, row)
		}
		instances = append(instances, Instance{
			Scenario: s,
			Row:      &row,
			Title:    row.Substitute(s.Name),
			Steps:    steps,
		})
	}
	return instances
}

func substituteStep(step Step, row Row) Step {
	out := step
	out.Text = row.Substitute(step.Text)
	if step.Table != nil {
		out.Table = make([][]string, len(step.Table))
		for i, cells := range step.Table {
			out.Table[i] = make([]string, len(cells))
			for j, cell := range cells {
				out.Table[i][j] = row.Substitute(cell)
			}
		}
	}
	return out
}

// AllSteps returns background steps followed by the instance steps.
func (in Instance) AllSteps() []Step {
	steps := make([]Step, 0, len(in.Scenario.Background)+len(in.Steps))
	steps = append(steps, in.Scenario.Background...)
	return append(steps, in.Steps...)
}
