package records

import (
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2 January 2006",
	"2 Jan 2006",
}

// Excel stores dates as days since 1899-12-30 (the 1900 leap-year bug is
// baked into that epoch).
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Serials outside (minExcelSerial, maxExcelSerial) are not read as dates.
// The lower bound (1910-01-01) keeps bare years such as "2010" from being
// taken as 1905 serials.
const (
	minExcelSerial = 3653
	maxExcelSerial = 2958466
)

// ParseDate converts a cell value into ISO YYYY-MM-DD. Unparseable or empty
// input reports false and never panics. Slash and dash day-first layouts are
// read UK style.
func ParseDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(time.DateOnly), true
		}
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > minExcelSerial && serial < maxExcelSerial {
		days := int(serial)
		return excelEpoch.AddDate(0, 0, days).Format(time.DateOnly), true
	}
	return "", false
}
