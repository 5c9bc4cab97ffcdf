package matching

import (
	"testing"

	"chmatch/internal/registry"
)

func company(name, created, locality string) registry.Company {
	return registry.Company{Name: name, CreatedOn: created, Address: registry.Address{Locality: locality}}
}

func TestScorerNamePoints(t *testing.T) {
	s := NewScorer(DefaultPolicy())
	tests := []struct {
		name      string
		candidate string
		input     string
		want      int
	}{
		{"long containment", "ACME ENTERPRISES HOLDINGS LIMITED", "Acme Enterprises Holdings", 7},
		{"medium containment", "ACME WIDGETS LTD", "Acme Widgets", 4},
		{"short containment", "ACME LTD", "Acme", 2},
		{"reverse containment", "ACME", "Acme Trading Company Limited", 2},
		{"full word overlap", "ACME ENTERPRISES LIMITED", "Acme Enterprises Ltd", 3},
		{"half overlap rounds to even", "ACME GADGETS LTD", "Acme Widgets", 2},
		{"third overlap", "ACME GADGETS TOOLS", "Acme Widgets Spares", 1},
		{"no overlap", "BETA LIMITED", "Alpha Ltd", 0},
		{"only stopwords", "THE COMPANY LIMITED", "Holdings Group", 0},
		{"empty input name", "ACME LTD", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Breakdown(company(tt.candidate, "", ""), Input{Name: tt.input}).Name
			if got != tt.want {
				t.Fatalf("name points = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScorerDateAndLocation(t *testing.T) {
	s := NewScorer(DefaultPolicy())
	c := company("ZETA LIMITED", "2010-05-04", "Leeds")

	b := s.Breakdown(c, Input{Name: "Alpha", IncorporationDate: "2010-05-04", Headquarters: "Leeds, West Yorkshire"})
	if b.Date != 3 || b.Location != 2 {
		t.Fatalf("expected date 3 and location 2, got %+v", b)
	}

	b = s.Breakdown(c, Input{Name: "Alpha", IncorporationDate: "04/05/2010", Headquarters: "LEEDS"})
	if b.Date != 3 || b.Location != 2 {
		t.Fatalf("expected day-first date and folded locality to match, got %+v", b)
	}

	b = s.Breakdown(c, Input{Name: "Alpha", IncorporationDate: "not a date", Headquarters: "Bradford"})
	if b.Date != 0 || b.Location != 0 {
		t.Fatalf("expected no date or location points, got %+v", b)
	}

	b = s.Breakdown(company("ZETA LIMITED", "garbage", ""), Input{Name: "Alpha", IncorporationDate: "2010-05-04", Headquarters: "Leeds"})
	if b.Date != 0 || b.Location != 0 {
		t.Fatalf("expected unparseable candidate date and empty locality to score 0, got %+v", b)
	}
}

func TestScorerClampsToRange(t *testing.T) {
	s := NewScorer(DefaultPolicy())

	full := s.Breakdown(
		company("ACME ENTERPRISES HOLDINGS LIMITED", "2010-05-04", "Leeds"),
		Input{Name: "Acme Enterprises Holdings", IncorporationDate: "2010-05-04", Headquarters: "Leeds"},
	)
	if full.Name+full.Date+full.Location != 12 {
		t.Fatalf("expected raw 7+3+2, got %+v", full)
	}
	if full.Total != MaxScore {
		t.Fatalf("expected clamp to %d, got %d", MaxScore, full.Total)
	}

	if got := s.Score(company("BETA", "", ""), Input{Name: "Alpha"}); got != MinScore {
		t.Fatalf("expected floor of %d, got %d", MinScore, got)
	}
	if got := s.Score(registry.Company{}, Input{}); got != MinScore {
		t.Fatalf("expected floor for empty inputs, got %d", got)
	}
}

func TestScorerUsesPolicyPoints(t *testing.T) {
	policy := DefaultPolicy()
	policy.ShortContainmentPoints = 5
	policy.LocationPoints = 4
	s := NewScorer(policy)
	got := s.Score(company("ACME LTD", "", "York"), Input{Name: "Acme", Headquarters: "York"})
	if got != 9 {
		t.Fatalf("expected configured points 5+4, got %d", got)
	}
}

func TestRankOrdersByScoreStable(t *testing.T) {
	s := NewScorer(DefaultPolicy())
	ranked := s.Rank([]registry.Company{
		company("BETA", "", ""),
		company("ACME WIDGETS LTD", "", ""),
		company("GAMMA", "", ""),
	}, Input{Name: "Acme Widgets"})
	if ranked[0].Company.Name != "ACME WIDGETS LTD" {
		t.Fatalf("expected best candidate first, got %q", ranked[0].Company.Name)
	}
	if ranked[1].Company.Name != "BETA" || ranked[2].Company.Name != "GAMMA" {
		t.Fatalf("expected ties to keep registry order, got %q, %q", ranked[1].Company.Name, ranked[2].Company.Name)
	}
}
