package records

import "strings"

// Record is one workbook row keyed by header. It is never mutated while a
// record is being resolved.
type Record struct {
	Row     int
	Headers []string
	Values  map[string]string
}

// New pairs headers with cells. Missing trailing cells become empty strings
// and blank headers are skipped.
func New(row int, headers, cells []string) Record {
	values := make(map[string]string, len(headers))
	kept := make([]string, 0, len(headers))
	for i, header := range headers {
		if strings.TrimSpace(header) == "" {
			continue
		}
		if _, dup := values[header]; dup {
			continue
		}
		value := ""
		if i < len(cells) {
			value = cells[i]
		}
		values[header] = value
		kept = append(kept, header)
	}
	return Record{Row: row, Headers: kept, Values: values}
}

// FromMap builds a record from header/value pairs, ordering headers as given.
func FromMap(row int, headers []string, values map[string]string) Record {
	cells := make([]string, len(headers))
	for i, header := range headers {
		cells[i] = values[header]
	}
	return New(row, headers, cells)
}

// Cell returns the raw value under header.
func (r Record) Cell(header string) (string, bool) {
	v, ok := r.Values[header]
	return v, ok
}

// findHeader resolves alias against the record's headers: exact match first,
// then a match ignoring case and embedded newlines/tabs.
func (r Record) findHeader(alias string) (string, bool) {
	if _, ok := r.Values[alias]; ok {
		return alias, true
	}
	want := headerKey(alias)
	for _, header := range r.Headers {
		if headerKey(header) == want {
			return header, true
		}
	}
	return "", false
}

func headerKey(header string) string {
	return strings.ToLower(strings.Join(strings.Fields(header), " "))
}
