package cucumber

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

// RewriteLine replaces one line of a feature file with column-1 spaces,
// the inserted text and the original line content trimmed of surrounding
// whitespace. All other lines are written back unchanged.
func RewriteLine(path string, line, column int, inserted string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat feature: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read feature: %w", err)
	}
	updated, err := rewriteLine(data, line, column, inserted)
	if err != nil {
		return fmt.Errorf("rewrite %s: %w", path, err)
	}
	if err := os.WriteFile(path, updated, info.Mode().Perm()); err != nil {
		return fmt.Errorf("write feature: %w", err)
	}
	return nil
}

func rewriteLine(data []byte, line, column int, inserted string) ([]byte, error) {
	lines := bytes.SplitAfter(data, []byte("\n"))
	if n := len(lines); n > 0 && len(lines[n-1]) == 0 {
		lines = lines[:n-1]
	}
	if line < 1 || line > len(lines) {
		return nil, fmt.Errorf("line %d out of range (1..%d)", line, len(lines))
	}
	if column < 1 {
		column = 1
	}
	origin := strings.TrimSpace(string(lines[line-1]))
	lines[line-1] = []byte(strings.Repeat(" ", column-1) + inserted + origin + "\n")
	return bytes.Join(lines, nil), nil
}
