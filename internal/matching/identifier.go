package matching

import (
	"regexp"
	"strings"

	"chmatch/internal/records"
)

// 8 digits, or a 2 or 3 letter prefix followed by 6 digits.
var identifierPattern = regexp.MustCompile(`^(?:[0-9]{8}|[A-Z]{2}[0-9]{6}|[A-Z]{3}[0-9]{6})$`)

// IsValidIdentifier reports whether raw is a syntactically plausible company
// registration number. Placeholder values are invalid, not errors.
func IsValidIdentifier(raw string, placeholders records.PlaceholderSet) bool {
	if placeholders.Contains(raw) {
		return false
	}
	return identifierPattern.MatchString(CanonicalIdentifier(raw))
}

// CanonicalIdentifier is the trimmed upper-case form used for lookups.
func CanonicalIdentifier(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
