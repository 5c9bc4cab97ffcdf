package matching

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"chmatch/internal/records"
	"chmatch/internal/registry"
	"chmatch/internal/textutil"
)

// Input is the record side of a scoring comparison. Empty fields skip their
// dimension.
type Input struct {
	Name              string
	IncorporationDate string
	Headquarters      string
}

// Breakdown is the per-dimension result of scoring one candidate.
type Breakdown struct {
	Name     int `json:"name"`
	Date     int `json:"date"`
	Location int `json:"location"`
	Total    int `json:"total"`
}

// Scored pairs a candidate with its score.
type Scored struct {
	Company   registry.Company `json:"company"`
	Breakdown Breakdown        `json:"breakdown"`
}

// Scorer assigns a 1-10 confidence to a candidate/record pair.
type Scorer struct {
	policy Policy
}

// NewScorer returns a scorer using policy.
func NewScorer(policy Policy) *Scorer {
	return &Scorer{policy: policy}
}

// Score returns the clamped total for candidate against in.
func (s *Scorer) Score(candidate registry.Company, in Input) int {
	return s.Breakdown(candidate, in).Total
}

// Breakdown scores name, incorporation date and location, then clamps the
// sum into [MinScore, MaxScore].
func (s *Scorer) Breakdown(candidate registry.Company, in Input) Breakdown {
	b := Breakdown{
		Name:     s.namePoints(candidate.Name, in.Name),
		Date:     s.datePoints(candidate.CreatedOn, in.IncorporationDate),
		Location: s.locationPoints(candidate.Address.Locality, in.Headquarters),
	}
	b.Total = min(max(b.Name+b.Date+b.Location, MinScore), MaxScore)
	return b
}

// Rank scores every candidate and orders them by descending total. Equal
// totals keep registry order.
func (s *Scorer) Rank(candidates []registry.Company, in Input) []Scored {
	ranked := make([]Scored, 0, len(candidates))
	for _, candidate := range candidates {
		ranked = append(ranked, Scored{Company: candidate, Breakdown: s.Breakdown(candidate, in)})
	}
	slices.SortStableFunc(ranked, func(a, b Scored) int {
		return cmp.Compare(b.Breakdown.Total, a.Breakdown.Total)
	})
	return ranked
}

func (s *Scorer) namePoints(candidateName, inputName string) int {
	a := textutil.Fold(NormalizeName(candidateName))
	b := textutil.Fold(NormalizeName(inputName))
	if a == "" || b == "" {
		return 0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
		switch {
		case la > s.policy.LongNameLength && lb > s.policy.LongNameLength:
			return s.policy.LongContainmentPoints
		case la > s.policy.MediumNameLength && lb > s.policy.MediumNameLength:
			return s.policy.MediumContainmentPoints
		default:
			return s.policy.ShortContainmentPoints
		}
	}
	ratio := textutil.OverlapRatio(
		textutil.WordSet(a, s.policy.Stopwords),
		textutil.WordSet(b, s.policy.Stopwords),
	)
	return int(math.RoundToEven(ratio * float64(s.policy.WordOverlapPoints)))
}

func (s *Scorer) datePoints(candidateDate, inputDate string) int {
	a, ok := records.ParseDate(candidateDate)
	if !ok {
		return 0
	}
	b, ok := records.ParseDate(inputDate)
	if !ok || a != b {
		return 0
	}
	return s.policy.DatePoints
}

func (s *Scorer) locationPoints(locality, headquarters string) int {
	locality = textutil.Fold(locality)
	if locality == "" || strings.TrimSpace(headquarters) == "" {
		return 0
	}
	if strings.Contains(textutil.Fold(headquarters), locality) {
		return s.policy.LocationPoints
	}
	return 0
}
