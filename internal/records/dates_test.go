package records_test

import (
	"testing"

	"chmatch/internal/records"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"2015-03-01", "2015-03-01", true},
		{" 2015-03-01 ", "2015-03-01", true},
		{"2015-03-01T00:00:00Z", "2015-03-01", true},
		{"2015-03-01 00:00:00", "2015-03-01", true},
		{"01/03/2015", "2015-03-01", true},
		{"1 March 2015", "2015-03-01", true},
		{"42064", "2015-03-01", true},
		{"42064.5", "2015-03-01", true},
		{"3654", "1910-01-01", true},
		{"2010", "", false},
		{"1", "", false},
		{"", "", false},
		{"not a date", "", false},
		{"2015-13-45", "", false},
	}
	for _, tt := range tests {
		got, ok := records.ParseDate(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Fatalf("ParseDate(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
