package domain

import (
	"regexp"
	"strings"
)

// Validation Helpers

var cveIDRegex = regexp.MustCompile(`^CVE-\d{4}-\d{4,}$`)

// NormalizeCVEID upper-cases a candidate identifier. Lookups are
// case-insensitive at the API boundary.
func NormalizeCVEID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// ValidateCVEID checks the canonical CVE grammar: literal prefix,
// 4-digit year, 4-or-more digit sequence number. The input must
// already be normalized. No side effects.
func ValidateCVEID(id string) error {
	if !cveIDRegex.MatchString(id) {
		return ErrInvalidCVEID
	}
	return nil
}
