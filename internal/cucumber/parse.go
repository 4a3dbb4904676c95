package cucumber

import (
	"fmt"
	"io"
	"os"
	"strings"

	gherkin "github.com/cucumber/gherkin/go/v26"
	messages "github.com/cucumber/messages/go/v21"
)

// ParseFeatureFile reads and parses a feature file.
func ParseFeatureFile(path string) (*Feature, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read feature: %w", err)
	}
	defer file.Close()
	return ParseFeature(file, path)
}

// ParseFeature parses gherkin text into the feature model.
func ParseFeature(r io.Reader, path string) (*Feature, error) {
	doc, err := gherkin.ParseGherkinDocument(r, (&messages.Incrementing{}).NewId)
	if err != nil {
		return nil, fmt.Errorf("parse feature %s: %w", path, err)
	}
	if doc.Feature == nil {
		return nil, fmt.Errorf("missing feature in %s", path)
	}
	return convertFeature(doc.Feature, path), nil
}

func convertFeature(src *messages.Feature, path string) *Feature {
	feature := &Feature{
		Path:        path,
		Name:        strings.TrimSpace(src.Name),
		Description: src.Description,
		Tags:        tagNames(src.Tags),
		Location:    locationOf(src.Location),
	}
	for _, child := range src.Children {
		if child == nil {
			continue
		}
		if child.Background != nil {
			feature.Background = append(feature.Background, convertSteps(child.Background.Steps)...)
		}
		if child.Scenario != nil {
			feature.Scenarios = append(feature.Scenarios, convertScenario(child.Scenario, feature.Background))
		}
		if child.Rule != nil {
			background := append([]Step(nil), feature.Background...)
			for _, ruleChild := range child.Rule.Children {
				if ruleChild == nil {
					continue
				}
				if ruleChild.Background != nil {
					background = append(background, convertSteps(ruleChild.Background.Steps)...)
				}
				if ruleChild.Scenario != nil {
					feature.Scenarios = append(feature.Scenarios, convertScenario(ruleChild.Scenario, background))
				}
			}
		}
	}
	return feature
}

func convertScenario(src *messages.Scenario, background []Step) Scenario {
	scenario := Scenario{
		Name:       strings.TrimSpace(src.Name),
		Keyword:    strings.TrimSpace(src.Keyword),
		Tags:       tagNames(src.Tags),
		Steps:      convertSteps(src.Steps),
		Outline:    len(src.Examples) > 0,
		Location:   locationOf(src.Location),
		Background: append([]Step(nil), background...),
	}
	for _, examples := range src.Examples {
		if examples == nil || examples.TableHeader == nil {
			continue
		}
		keys := cellValues(examples.TableHeader)
		for _, row := range examples.TableBody {
			if row == nil {
				continue
			}
			scenario.Examples = append(scenario.Examples, Row{
				Keys:     keys,
				Values:   cellValues(row),
				Location: locationOf(row.Location),
			})
		}
	}
	return scenario
}

func convertSteps(src []*messages.Step) []Step {
	steps := make([]Step, 0, len(src))
	for _, step := range src {
		if step == nil {
			continue
		}
		out := Step{
			Keyword:  strings.TrimSpace(step.Keyword),
			Text:     strings.TrimSpace(step.Text),
			Location: locationOf(step.Location),
		}
		if step.DataTable != nil {
			out.Table = make([][]string, 0, len(step.DataTable.Rows))
			for _, row := range step.DataTable.Rows {
				out.Table = append(out.Table, cellValues(row))
			}
		}
		steps = append(steps, out)
	}
	return steps
}

func tagNames(tags []*messages.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == nil {
			continue
		}
		names = append(names, strings.TrimSpace(tag.Name))
	}
	return names
}

func cellValues(row *messages.TableRow) []string {
	if row == nil {
		return nil
	}
	values := make([]string, 0, len(row.Cells))
	for _, cell := range row.Cells {
		if cell == nil {
			values = append(values, "")
			continue
		}
		values = append(values, cell.Value)
	}
	return values
}

// locationOf extracts a Location from a gherkin location.
func locationOf(location *messages.Location) Location {
	if location == nil {
		return Location{}
	}
	return Location{Line: int(location.Line), Column: int(location.Column)}
}
