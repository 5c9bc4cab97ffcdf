package matching

import (
	"chmatch/internal/config"
	"chmatch/internal/textutil"
)

// Score bounds once scoring has run.
const (
	MinScore = 1
	MaxScore = 10
)

// Policy carries every point value and threshold used by the scorer and the
// resolver.
type Policy struct {
	LongNameLength          int
	MediumNameLength        int
	LongContainmentPoints   int
	MediumContainmentPoints int
	ShortContainmentPoints  int
	WordOverlapPoints       int
	DatePoints              int
	LocationPoints          int
	// Tied top scores above this are accepted as multiple_best_matches.
	MultipleMatchThreshold int
	// Scored matches below this need manual review.
	ReviewBelow             int
	FallbackExactConfidence int
	Stopwords               map[string]struct{}
}

// PolicyFromConfig builds a Policy from the [matching] config section.
func PolicyFromConfig(cfg config.Matching) Policy {
	return Policy{
		LongNameLength:          cfg.LongNameLength,
		MediumNameLength:        cfg.MediumNameLength,
		LongContainmentPoints:   cfg.LongContainmentPoints,
		MediumContainmentPoints: cfg.MediumContainmentPoints,
		ShortContainmentPoints:  cfg.ShortContainmentPoints,
		WordOverlapPoints:       cfg.WordOverlapPoints,
		DatePoints:              cfg.DatePoints,
		LocationPoints:          cfg.LocationPoints,
		MultipleMatchThreshold:  cfg.MultipleMatchThreshold,
		ReviewBelow:             cfg.ReviewBelow,
		FallbackExactConfidence: cfg.FallbackExactConfidence,
		Stopwords:               textutil.StopSet(cfg.Stopwords),
	}
}

// DefaultPolicy returns the policy built from default configuration.
func DefaultPolicy() Policy {
	return PolicyFromConfig(config.Default().Matching)
}
