package matching

import (
	"strings"

	"chmatch/internal/records"
	"chmatch/internal/registry"
)

// Resolved holds the registry fields written back to a matched record.
type Resolved struct {
	Name           string `json:"name"`
	Number         string `json:"crn"`
	Status         string `json:"status,omitempty"`
	IncorporatedOn string `json:"inc_date,omitempty"`
	DissolvedOn    string `json:"dissolution_date,omitempty"`
	SICCodes       string `json:"sic_codes,omitempty"`
	Type           string `json:"type,omitempty"`
	PreviousNames  string `json:"previous_names,omitempty"`
	Locality       string `json:"locality,omitempty"`
	Postcode       string `json:"postcode,omitempty"`
}

// ToResolved maps a registry company to output fields.
func ToResolved(c registry.Company) Resolved {
	previous := make([]string, 0, len(c.PreviousNames))
	for _, p := range c.PreviousNames {
		if name := strings.TrimSpace(p.Name); name != "" {
			previous = append(previous, name)
		}
	}
	return Resolved{
		Name:           c.Name,
		Number:         c.Number,
		Status:         c.Status,
		IncorporatedOn: c.CreatedOn,
		DissolvedOn:    c.CeasedOn,
		SICCodes:       strings.Join(c.SICCodes, ", "),
		Type:           InferCompanyType(c.Type, c.Name, "", nil),
		PreviousNames:  strings.Join(previous, ", "),
		Locality:       c.Address.Locality,
		Postcode:       c.Address.PostalCode,
	}
}

const (
	TypeSoleTrader    = "sole trader"
	TypeNotApplicable = "n/a"
	TypeUnknown       = "Unknown"
)

var companyTypeIndicators = []struct {
	kind       string
	indicators []string
}{
	{"ltd", []string{" ltd", "limited"}},
	{"plc", []string{" plc"}},
	{"llp", []string{" llp"}},
	{"community-interest-company", []string{" cic"}},
	{TypeSoleTrader, []string{"sole trader", "freelancer"}},
}

// InferCompanyType simplifies a company type. A sole trader marker in the
// identifier cell wins, then the registry type, then legal-form suffixes in
// the name.
func InferCompanyType(registryType, name, rawIdentifier string, placeholders records.PlaceholderSet) string {
	if raw := strings.ToLower(strings.TrimSpace(rawIdentifier)); raw != "" {
		if strings.Contains(raw, "sole trader") || strings.Contains(raw, "freelancer") {
			return TypeSoleTrader
		}
		if placeholders.Contains(raw) {
			return TypeNotApplicable
		}
	}
	if t := strings.TrimSpace(registryType); t != "" {
		return t
	}
	lower := strings.ToLower(name)
	for _, entry := range companyTypeIndicators {
		for _, indicator := range entry.indicators {
			if strings.Contains(lower, indicator) {
				return entry.kind
			}
		}
	}
	return TypeUnknown
}
