package cucumber

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FeatureExt is the file extension of gherkin feature files.
const FeatureExt = ".feature"

// LoadFeatures expands entries and parses every feature file found.
func LoadFeatures(root string, entries []string) ([]*Feature, error) {
	paths, err := ExpandFeaturePaths(root, entries)
	if err != nil {
		return nil, err
	}
	features := make([]*Feature, 0, len(paths))
	for _, path := range paths {
		feature, err := ParseFeatureFile(path)
		if err != nil {
			return nil, err
		}
		features = append(features, feature)
	}
	return features, nil
}

// ExpandFeaturePaths resolves files, directories and globs into a sorted,
// de-duplicated list of feature file paths.
func ExpandFeaturePaths(root string, entries []string) ([]string, error) {
	seen := make(map[string]struct{})
	paths := make([]string, 0)
	add := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		resolved := resolvePath(root, entry)
		if strings.ContainsAny(entry, "*?[]") {
			matches, err := filepath.Glob(resolved)
			if err != nil {
				return nil, fmt.Errorf("expand glob %q: %w", entry, err)
			}
			for _, match := range matches {
				if strings.HasSuffix(match, FeatureExt) {
					add(match)
				}
			}
			continue
		}
		info, err := os.Stat(resolved)
		if err != nil {
			return nil, fmt.Errorf("stat feature path %q: %w", entry, err)
		}
		if !info.IsDir() {
			add(resolved)
			continue
		}
		found, err := walkFeatureFiles(resolved)
		if err != nil {
			return nil, err
		}
		for _, path := range found {
			add(path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// resolvePath joins relative paths onto root.
func resolvePath(root, path string) string {
	if filepath.IsAbs(path) || root == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

// walkFeatureFiles collects .feature files below dir.
func walkFeatureFiles(dir string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), FeatureExt) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk feature root %q: %w", dir, err)
	}
	return found, nil
}
