package records

import (
	"strings"

	"chmatch/internal/config"
)

// Field names a logical value pulled from a record.
type Field string

const (
	FieldIdentifier        Field = "identifier"
	FieldPrimaryName       Field = "primary_name"
	FieldFallbackName      Field = "fallback_name"
	FieldIncorporationDate Field = "incorporation_date"
	FieldHeadquarters      Field = "headquarters"
	FieldPostcode          Field = "postcode"
)

// Accessor resolves logical fields through ordered header alias lists.
type Accessor struct {
	aliases      map[Field][]string
	placeholders PlaceholderSet
	padNumeric   bool
}

// NewAccessor builds an accessor from the [fields] config section.
func NewAccessor(cfg config.Fields) *Accessor {
	return &Accessor{
		aliases: map[Field][]string{
			FieldIdentifier:        cfg.Identifier,
			FieldPrimaryName:       cfg.PrimaryName,
			FieldFallbackName:      cfg.FallbackName,
			FieldIncorporationDate: cfg.IncorporationDate,
			FieldHeadquarters:      cfg.Headquarters,
			FieldPostcode:          cfg.Postcode,
		},
		placeholders: NewPlaceholderSet(cfg.Placeholders),
		padNumeric:   cfg.PadNumericIdentifiers,
	}
}

// Placeholders returns the configured placeholder set.
func (a *Accessor) Placeholders() PlaceholderSet {
	return a.placeholders
}

// Aliases returns the ordered header aliases for field.
func (a *Accessor) Aliases(field Field) []string {
	return a.aliases[field]
}

// Get returns the first cleaned, non-placeholder value found under field's
// aliases, in alias order.
func (a *Accessor) Get(rec Record, field Field) (string, bool) {
	value, _, ok := a.lookup(rec, field)
	return value, ok
}

// Header returns the record header that field resolves to, whether or not
// it holds a value. Used to write enriched values back into existing columns.
func (a *Accessor) Header(rec Record, field Field) (string, bool) {
	for _, alias := range a.aliases[field] {
		if header, ok := rec.findHeader(alias); ok {
			return header, true
		}
	}
	return "", false
}

func (a *Accessor) lookup(rec Record, field Field) (string, string, bool) {
	for _, alias := range a.aliases[field] {
		header, ok := rec.findHeader(alias)
		if !ok {
			continue
		}
		if value, ok := Clean(rec.Values[header], a.placeholders); ok {
			return value, header, true
		}
	}
	return "", "", false
}

// Identifier returns the raw claimed identifier. Spreadsheet numeric cells
// lose leading zeros and may carry a ".0" suffix; with padding enabled a
// 5-7 digit value is left-padded to 8 digits.
func (a *Accessor) Identifier(rec Record) (string, bool) {
	value, ok := a.Get(rec, FieldIdentifier)
	if !ok {
		return "", false
	}
	if trimmed, found := strings.CutSuffix(value, ".0"); found && isDigits(trimmed) {
		value = trimmed
	}
	if a.padNumeric && isDigits(value) && len(value) >= 5 && len(value) < 8 {
		value = strings.Repeat("0", 8-len(value)) + value
	}
	return value, true
}

// RawIdentifier returns the identifier cell text even when it is a
// placeholder, so company type inference can see "sole trader" markers.
func (a *Accessor) RawIdentifier(rec Record) string {
	for _, alias := range a.aliases[FieldIdentifier] {
		if header, ok := rec.findHeader(alias); ok {
			if v := strings.TrimSpace(rec.Values[header]); v != "" {
				return v
			}
		}
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
