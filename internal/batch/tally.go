package batch

import "chmatch/internal/matching"

// Tally accumulates outcome counts for a run.
type Tally struct {
	Processed   int
	Matched     int
	NeedsReview int
	Errors      int
	ByType      map[matching.MatchType]int
}

// Add counts one outcome.
func (t *Tally) Add(out matching.Outcome) {
	if t.ByType == nil {
		t.ByType = make(map[matching.MatchType]int)
	}
	t.Processed++
	t.ByType[out.MatchType]++
	if out.Matched() {
		t.Matched++
	}
	if out.NeedsReview {
		t.NeedsReview++
	}
	if out.MatchType == matching.MatchError {
		t.Errors++
	}
}

// ReviewRate is the share of processed records flagged for review, or 0
// before any record is processed.
func (t Tally) ReviewRate() float64 {
	if t.Processed == 0 {
		return 0
	}
	return float64(t.NeedsReview) / float64(t.Processed)
}

// Counts returns the per-match-type counts keyed by string.
func (t Tally) Counts() map[string]int {
	counts := make(map[string]int, len(t.ByType))
	for k, v := range t.ByType {
		counts[string(k)] = v
	}
	return counts
}
