package matching

import "chmatch/internal/services"

// MatchType classifies how a record was resolved.
type MatchType string

const (
	MatchID               MatchType = "id_match"
	MatchName             MatchType = "name_match"
	MatchFallbackName     MatchType = "fallback_name_match"
	MatchBestScored       MatchType = "best_scored_match"
	MatchMultiple         MatchType = "multiple_best_matches"
	MatchMultipleLowScore MatchType = "multiple_best_matches_low_score"
	MatchNone             MatchType = "no_match"
	MatchError            MatchType = "error"
)

// Tier names the resolution stage that produced an outcome.
type Tier string

const (
	TierIdentifier   Tier = "identifier"
	TierPrimaryName  Tier = "primary_name"
	TierFallbackName Tier = "fallback_name"
	TierNone         Tier = "none"
)

// Outcome is the result of resolving one record. It is built once and not
// modified afterwards.
type Outcome struct {
	MatchType   MatchType  `json:"match_type"`
	Confidence  int        `json:"confidence"`
	NeedsReview bool       `json:"needs_manual_review"`
	Tier        Tier       `json:"tier"`
	Query       string     `json:"query,omitempty"`
	Resolved    *Resolved  `json:"resolved,omitempty"`
	Candidates  []Resolved `json:"candidates,omitempty"`
	Err         string     `json:"error,omitempty"`
	ErrorKind   string     `json:"error_kind,omitempty"`
}

// newOutcome enforces that a reviewed outcome never reports full confidence.
func newOutcome(matchType MatchType, tier Tier, query string, confidence int, review bool) Outcome {
	if review && confidence >= MaxScore {
		confidence = MaxScore - 1
	}
	return Outcome{
		MatchType:   matchType,
		Confidence:  confidence,
		NeedsReview: review,
		Tier:        tier,
		Query:       query,
	}
}

// NoMatch is the terminal outcome when no tier produced a result.
func NoMatch() Outcome {
	return newOutcome(MatchNone, TierNone, "", 0, true)
}

// ErrorOutcome records a failure while processing a record.
func ErrorOutcome(err error) Outcome {
	out := newOutcome(MatchError, TierNone, "", 0, true)
	if err != nil {
		out.Err = err.Error()
		out.ErrorKind = services.Classify(err)
	}
	return out
}

// Matched reports whether the outcome carries a single resolved company.
func (o Outcome) Matched() bool {
	return o.Resolved != nil
}
