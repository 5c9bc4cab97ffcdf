package records_test

import (
	"testing"

	"chmatch/internal/config"
	"chmatch/internal/records"
)

func newAccessor(t *testing.T) *records.Accessor {
	t.Helper()
	return records.NewAccessor(config.Default().Fields)
}

func TestGetWalksAliasesInOrder(t *testing.T) {
	acc := newAccessor(t)
	rec := records.New(2,
		[]string{"Companies House name\n(or note Sole Trader/ Freelancer)", "Company Name"},
		[]string{"n/a", "Acme Widgets Ltd"},
	)

	got, ok := acc.Get(rec, records.FieldPrimaryName)
	if !ok || got != "Acme Widgets Ltd" {
		t.Fatalf("expected placeholder to fall through to next alias, got %q %v", got, ok)
	}
}

func TestGetMatchesHeadersLoosely(t *testing.T) {
	acc := newAccessor(t)
	rec := records.New(2,
		[]string{"companies house NAME (or note sole trader/ freelancer)", "crn"},
		[]string{"  Acme\tWidgets Ltd\n", "01234567"},
	)

	name, ok := acc.Get(rec, records.FieldPrimaryName)
	if !ok || name != "AcmeWidgets Ltd" {
		t.Fatalf("unexpected name %q %v", name, ok)
	}
	if id, ok := acc.Identifier(rec); !ok || id != "01234567" {
		t.Fatalf("unexpected identifier %q %v", id, ok)
	}
}

func TestPlaceholdersAreAbsent(t *testing.T) {
	acc := newAccessor(t)
	for _, value := range []string{"", "  ", "N/A", "nan", "None", "Sole Trader", "freelancer", "self employed"} {
		rec := records.New(2, []string{"Company Registration Number"}, []string{value})
		if v, ok := acc.Get(rec, records.FieldIdentifier); ok {
			t.Fatalf("expected %q to be treated as absent, got %q", value, v)
		}
	}
}

func TestIdentifierPadding(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		pad  bool
		want string
	}{
		{"seven digits padded", "1234567", true, "01234567"},
		{"float suffix removed", "1234567.0", true, "01234567"},
		{"five digits padded", "12345", true, "00012345"},
		{"four digits untouched", "1234", true, "1234"},
		{"prefixed untouched", "SC123456", true, "SC123456"},
		{"padding disabled", "1234567", false, "1234567"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := config.Default().Fields
			fields.PadNumericIdentifiers = tt.pad
			acc := records.NewAccessor(fields)
			rec := records.New(2, []string{"CRN"}, []string{tt.raw})
			got, ok := acc.Identifier(rec)
			if !ok || got != tt.want {
				t.Fatalf("Identifier(%q) = %q, %v; want %q", tt.raw, got, ok, tt.want)
			}
		})
	}
}

func TestRawIdentifierKeepsPlaceholders(t *testing.T) {
	acc := newAccessor(t)
	rec := records.New(2, []string{"Company Registration Number"}, []string{" Sole Trader "})
	if got := acc.RawIdentifier(rec); got != "Sole Trader" {
		t.Fatalf("unexpected raw identifier %q", got)
	}
}

func TestHeaderResolvesWithoutValue(t *testing.T) {
	acc := newAccessor(t)
	rec := records.New(2, []string{"Registered Postcode"}, nil)
	header, ok := acc.Header(rec, records.FieldPostcode)
	if !ok || header != "Registered Postcode" {
		t.Fatalf("unexpected header %q %v", header, ok)
	}
	if _, ok := acc.Header(rec, records.FieldFallbackName); ok {
		t.Fatal("expected no fallback name header")
	}
}

func TestNewSkipsBlankAndDuplicateHeaders(t *testing.T) {
	rec := records.New(3, []string{"A", "", "A", "B"}, []string{"1", "2", "3"})
	if len(rec.Headers) != 2 {
		t.Fatalf("unexpected headers %q", rec.Headers)
	}
	if v, _ := rec.Cell("A"); v != "1" {
		t.Fatalf("expected first duplicate to win, got %q", v)
	}
	if v, ok := rec.Cell("B"); !ok || v != "" {
		t.Fatalf("expected missing trailing cell to be empty, got %q %v", v, ok)
	}
}
