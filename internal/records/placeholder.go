package records

import "strings"

// PlaceholderSet holds cell values that mean "no value" (n/a, none, sole
// trader, ...). Membership is checked on the trimmed lower-cased value.
type PlaceholderSet map[string]struct{}

// NewPlaceholderSet builds a set from values. The empty string is always a member.
func NewPlaceholderSet(values []string) PlaceholderSet {
	set := PlaceholderSet{"": {}}
	for _, v := range values {
		set[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	return set
}

// Contains reports whether v is a placeholder.
func (p PlaceholderSet) Contains(v string) bool {
	_, ok := p[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

var controlStripper = strings.NewReplacer("\n", "", "\r", "", "\t", "")

// Clean strips embedded newlines, carriage returns and tabs, trims the value,
// and reports false when nothing usable remains.
func Clean(v string, placeholders PlaceholderSet) (string, bool) {
	cleaned := strings.TrimSpace(controlStripper.Replace(v))
	if cleaned == "" || placeholders.Contains(cleaned) {
		return "", false
	}
	return cleaned, true
}
