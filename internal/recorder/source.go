package recorder

import (
	"fmt"
	"path/filepath"
	"sync"

	"featurerail/internal/cucumber"
)

// FeatureSource returns the parsed feature for a URI reported by the runner.
type FeatureSource func(uri string) (*cucumber.Feature, error)

// FileSource parses feature files relative to root and caches them.
func FileSource(root string) FeatureSource {
	var mu sync.Mutex
	cache := map[string]*cucumber.Feature{}
	return func(uri string) (*cucumber.Feature, error) {
		path := uri
		if !filepath.IsAbs(path) && root != "" {
			path = filepath.Join(root, path)
		}
		mu.Lock()
		defer mu.Unlock()
		if feature, ok := cache[path]; ok {
			return feature, nil
		}
		feature, err := cucumber.ParseFeatureFile(path)
		if err != nil {
			return nil, fmt.Errorf("load feature %s: %w", uri, err)
		}
		cache[path] = feature
		return feature, nil
	}
}

// MatchInstance finds the instance of feature whose title and full step
// text list equal the given ones. When no instance matches exactly a unique
// title match is accepted.
func MatchInstance(feature *cucumber.Feature, title string, stepTexts []string) (cucumber.Instance, bool) {
	var byTitle []cucumber.Instance
	for i := range feature.Scenarios {
		for _, instance := range feature.Scenarios[i].Expand() {
			if instance.Title != title {
				continue
			}
			if sameTexts(instance.AllSteps(), stepTexts) {
				return instance, true
			}
			byTitle = append(byTitle, instance)
		}
	}
	if len(byTitle) == 1 {
		return byTitle[0], true
	}
	return cucumber.Instance{}, false
}

func sameTexts(steps []cucumber.Step, texts []string) bool {
	if len(steps) != len(texts) {
		return false
	}
	for i, step := range steps {
		if step.Text != texts[i] {
			return false
		}
	}
	return true
}
