package matching

import (
	"fmt"
	"strings"
)

var nameStripper = strings.NewReplacer("\n", "", "\r", "", "\t", "")

// NormalizeName removes embedded newlines, carriage returns and tabs and
// trims surrounding whitespace. Non-string values are formatted with fmt;
// nil yields "".
func NormalizeName(v any) string {
	var s string
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		s = value
	case *string:
		if value == nil {
			return ""
		}
		s = *value
	case fmt.Stringer:
		s = value.String()
	default:
		s = fmt.Sprint(value)
	}
	return strings.TrimSpace(nameStripper.Replace(s))
}
