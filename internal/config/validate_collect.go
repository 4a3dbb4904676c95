package config

import "strings"

// issueAdder adds a validation issue to a shared collector.
type issueAdder func(field, message string)

// issueCollector accumulates validation issues in field order.
type issueCollector struct {
	issues []Issue
}

func (c *issueCollector) add(field, message string) {
	c.issues = append(c.issues, Issue{Field: field, Message: message})
}

// requireText adds an issue when value is blank.
func (c *issueCollector) requireText(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		c.add(field, "is required")
		return false
	}
	return true
}

// requireID adds an issue when id is not a positive remote id.
func (c *issueCollector) requireID(field string, id int, what string) {
	if id <= 0 {
		c.add(field, "must be a positive "+what+" id")
	}
}

// result returns a ValidationError when issues are present.
func (c *issueCollector) result() error {
	if len(c.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: c.issues}
}
