package matching

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"chmatch/internal/config"
	"chmatch/internal/records"
	"chmatch/internal/registry"
)

func TestToResolved(t *testing.T) {
	got := ToResolved(registry.Company{
		Number:    "01234567",
		Name:      "ACME WIDGETS LIMITED",
		Status:    "dissolved",
		CreatedOn: "2001-02-03",
		CeasedOn:  "2020-01-01",
		Address:   registry.Address{Locality: "York", PostalCode: "YO1 7HH"},
		PreviousNames: []registry.PreviousName{
			{Name: "ACME GADGETS LIMITED"},
			{Name: " "},
			{Name: "ACME LTD"},
		},
		SICCodes: []string{"62012", "62020"},
	})
	want := Resolved{
		Name:           "ACME WIDGETS LIMITED",
		Number:         "01234567",
		Status:         "dissolved",
		IncorporatedOn: "2001-02-03",
		DissolvedOn:    "2020-01-01",
		SICCodes:       "62012, 62020",
		Type:           "ltd",
		PreviousNames:  "ACME GADGETS LIMITED, ACME LTD",
		Locality:       "York",
		Postcode:       "YO1 7HH",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("resolved mismatch (-want +got):\n%s", diff)
	}
}

func TestInferCompanyType(t *testing.T) {
	placeholders := records.NewPlaceholderSet(config.DefaultPlaceholders)
	tests := []struct {
		name         string
		registryType string
		company      string
		identifier   string
		want         string
	}{
		{"registry type wins", "private-limited-guarant-nsc", "Acme Ltd", "", "private-limited-guarant-nsc"},
		{"sole trader marker", "ltd", "Acme Ltd", "Sole Trader", TypeSoleTrader},
		{"freelancer marker", "", "", "freelancer (design)", TypeSoleTrader},
		{"placeholder identifier", "ltd", "Acme Ltd", "N/A", TypeNotApplicable},
		{"ltd suffix", "", "Acme Widgets Ltd", "", "ltd"},
		{"limited word", "", "ACME WIDGETS LIMITED", "", "ltd"},
		{"plc suffix", "", "Acme Holdings PLC", "", "plc"},
		{"llp suffix", "", "Smith & Jones LLP", "", "llp"},
		{"cic suffix", "", "Green Streets CIC", "", "community-interest-company"},
		{"unknown", "", "Acme", "", TypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferCompanyType(tt.registryType, tt.company, tt.identifier, placeholders); got != tt.want {
				t.Fatalf("InferCompanyType = %q, want %q", got, tt.want)
			}
		})
	}
}
