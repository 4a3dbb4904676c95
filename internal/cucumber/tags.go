package cucumber

import (
	"fmt"
	"strconv"
	"strings"
)

// IdentifierPrefix marks a tag that carries a remote case id.
const IdentifierPrefix = "@TR-C"

// IdentifierTag formats the tag for a remote case id.
func IdentifierTag(caseID int) string {
	return IdentifierPrefix + strconv.Itoa(caseID)
}

// IsIdentifierTag reports whether tag is a well-formed identifier tag.
func IsIdentifierTag(tag string) bool {
	_, err := CaseIDFromTag(tag)
	return err == nil
}

// CaseIDFromTag parses the case id out of an identifier tag.
func CaseIDFromTag(tag string) (int, error) {
	tag = strings.TrimSpace(tag)
	if !strings.HasPrefix(tag, IdentifierPrefix) {
		return 0, fmt.Errorf("tag %q is not an identifier tag", tag)
	}
	id, err := strconv.Atoi(strings.TrimPrefix(tag, IdentifierPrefix))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("tag %q has no valid case id", tag)
	}
	return id, nil
}

// IdentifierTags returns the identifier tags of a tag list in declaration order.
func IdentifierTags(tags []string) []string {
	out := make([]string, 0)
	for _, tag := range tags {
		if IsIdentifierTag(tag) {
			out = append(out, strings.TrimSpace(tag))
		}
	}
	return out
}

// HasTagContaining reports whether any tag contains keyword.
func HasTagContaining(tags []string, keyword string) bool {
	for _, tag := range tags {
		if strings.Contains(tag, keyword) {
			return true
		}
	}
	return false
}
