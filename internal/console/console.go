// Package console prints operator-facing progress for export and publish.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"featurerail/internal/export"
	"featurerail/internal/publish"
)

var (
	colorCreated = lipgloss.Color("34")
	colorUpdated = lipgloss.Color("33")
	colorWarn    = lipgloss.Color("214")
	colorMuted   = lipgloss.Color("244")
	colorTitle   = lipgloss.Color("63")
)

// isTerminal reports whether a writer is a TTY.
var isTerminal = defaultIsTerminal

// ResolveColor decides whether output is styled. mode is auto, always or never.
func ResolveColor(mode string, out io.Writer) (bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(mode))
	if normalized == "" {
		normalized = "auto"
	}
	switch normalized {
	case "auto":
		return isTerminal(out), nil
	case "always":
		return true, nil
	case "never":
		return false, nil
	default:
		return false, fmt.Errorf("invalid color mode %q (expected auto|always|never)", mode)
	}
}

func defaultIsTerminal(out io.Writer) bool {
	if out == nil {
		return false
	}
	if file, ok := out.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	if fder, ok := out.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(fder.Fd()))
	}
	return false
}

// Console writes one line per event.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	noColor bool
}

var (
	_ export.Reporter  = (*Console)(nil)
	_ publish.Reporter = (*Console)(nil)
)

// New returns a console writing to out.
func New(out io.Writer, color bool) *Console {
	return &Console{out: out, noColor: !color}
}

// Created reports cases created for a scenario.
func (c *Console) Created(scenario string, ids []int) {
	c.line(stylize("created", c.noColor, colorCreated) + " " + scenario + " " + stylize(formatIDs(ids), c.noColor, colorMuted))
}

// Updated reports cases updated for a scenario.
func (c *Console) Updated(scenario string, ids []int) {
	c.line(stylize("updated", c.noColor, colorUpdated) + " " + scenario + " " + stylize(formatIDs(ids), c.noColor, colorMuted))
}

// Skipped reports a scenario left untouched and the reason.
func (c *Console) Skipped(scenario string, err error) {
	c.line(stylize("skipped", c.noColor, colorWarn) + " " + scenario + ": " + err.Error())
}

// EntryAdded reports a suite added to a plan.
func (c *Console) EntryAdded(suite, plan string) {
	c.line(fmt.Sprintf("Adding suite %s to test plan %s", suite, plan))
}

// Unmatched reports a result that had no test to go to.
func (c *Console) Unmatched(suite, title string) {
	c.line(stylize("unmatched", c.noColor, colorWarn) + fmt.Sprintf(" result for test %s not published (%s)", title, suite))
}

// Published reports results submitted to a run.
func (c *Console) Published(run string, results int) {
	c.line(stylize("published", c.noColor, colorCreated) + fmt.Sprintf(" %d result(s) to %s", results, run))
}

// ExportSummary prints the totals of an export pass.
func (c *Console) ExportSummary(summary export.Summary) {
	c.line(stylize("Export", c.noColor, colorTitle) + fmt.Sprintf(": %d created, %d updated, %d skipped",
		len(summary.Created), len(summary.Updated), len(summary.Skipped)))
}

// PublishSummary prints the totals of a publish pass.
func (c *Console) PublishSummary(summary publish.Summary) {
	c.line(stylize("Results published", c.noColor, colorTitle) + fmt.Sprintf(": %d result(s), %d entr(ies) added, %d unmatched",
		summary.Results, len(summary.EntriesAdded), len(summary.Unmatched)))
}

// Printf writes a plain formatted line.
func (c *Console) Printf(format string, args ...any) {
	c.line(fmt.Sprintf(format, args...))
}

func (c *Console) line(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, text)
}

func formatIDs(ids []int) string {
	tags := make([]string, len(ids))
	for i, id := range ids {
		tags[i] = fmt.Sprintf("C%d", id)
	}
	return "[" + strings.Join(tags, " ") + "]"
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
