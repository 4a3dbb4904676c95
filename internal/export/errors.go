package export

import (
	"fmt"
	"strings"
)

// MismatchError reports a scenario whose identifier tags no longer line up
// with its example rows.
type MismatchError struct {
	Path     string
	Scenario string
	Tags     []string
	Cases    int
}

// Error includes the remediation steps.
func (err *MismatchError) Error() string {
	return fmt.Sprintf(
		"cannot update scenario %q in %s: it has %d identifier tag(s) but %d example row(s); "+
			"remove %s manually and export the scenario again as a new one",
		err.Scenario, err.Path, len(err.Tags), err.Cases, strings.Join(err.Tags, " "),
	)
}
