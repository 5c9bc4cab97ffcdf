package matching

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"chmatch/internal/logging"
	"chmatch/internal/records"
	"chmatch/internal/registry"
	"chmatch/internal/services"
	"chmatch/internal/textutil"
)

func (r *Resolver) identifierTier(ctx context.Context, res *resolution) (Outcome, bool) {
	logger := logging.WithContext(ctx, r.logger)
	raw, ok := r.accessor.Identifier(res.record)
	if !ok {
		return Outcome{}, false
	}
	if !IsValidIdentifier(raw, r.accessor.Placeholders()) {
		logger.Debug("identifier not valid; skipping lookup", logging.String("identifier", raw))
		return Outcome{}, false
	}
	number := CanonicalIdentifier(raw)
	company, err := r.registry.LookupByID(ctx, number)
	if err != nil || company == nil {
		logLookupFailure(logger, "identifier lookup failed", number, err)
		return Outcome{}, false
	}
	out := newOutcome(MatchID, TierIdentifier, number, MaxScore, false)
	resolved := ToResolved(*company)
	out.Resolved = &resolved
	return out, true
}

func (r *Resolver) primaryNameTier(ctx context.Context, res *resolution) (Outcome, bool) {
	if res.primaryName == "" {
		return Outcome{}, false
	}
	return r.nameTier(ctx, res, TierPrimaryName, res.primaryName)
}

func (r *Resolver) fallbackNameTier(ctx context.Context, res *resolution) (Outcome, bool) {
	name, ok := r.accessor.Get(res.record, records.FieldFallbackName)
	if !ok {
		return Outcome{}, false
	}
	if res.primaryName != "" && textutil.EqualFold(NormalizeName(name), NormalizeName(res.primaryName)) {
		return Outcome{}, false
	}
	return r.nameTier(ctx, res, TierFallbackName, name)
}

// nameTier searches by name, accepts an exact title match, and otherwise
// ranks every result. A low-scoring tie is remembered as provisional and the
// resolution continues.
func (r *Resolver) nameTier(ctx context.Context, res *resolution, t Tier, name string) (Outcome, bool) {
	logger := logging.WithContext(ctx, r.logger)
	result, err := r.registry.SearchByName(ctx, name)
	if err != nil || result == nil {
		logLookupFailure(logger, "name search failed", name, err)
		return Outcome{}, false
	}
	if len(result.Items) == 0 {
		logger.Debug("name search returned no results", logging.String("query", name))
		return Outcome{}, false
	}

	if item, ok := findExact(result.Items, name); ok {
		company := r.profileFor(ctx, logger, item)
		var out Outcome
		if t == TierFallbackName {
			out = newOutcome(MatchFallbackName, t, name, r.policy.FallbackExactConfidence, true)
		} else {
			out = newOutcome(MatchName, t, name, MaxScore, false)
		}
		resolved := ToResolved(company)
		out.Resolved = &resolved
		return out, true
	}

	in := res.input
	in.Name = name
	ranked := r.scorer.Rank(result.Items, in)
	top := ranked[0].Breakdown.Total
	tied := ranked[:1]
	for i := 1; i < len(ranked) && ranked[i].Breakdown.Total == top; i++ {
		tied = ranked[:i+1]
	}
	logger.Debug("scored name search results",
		logging.String("query", name),
		logging.Int("results", len(ranked)),
		logging.Int("top_score", top),
		logging.Int("tied", len(tied)),
	)

	switch {
	case len(tied) == 1:
		out := newOutcome(MatchBestScored, t, name, top, top < r.policy.ReviewBelow)
		resolved := ToResolved(tied[0].Company)
		out.Resolved = &resolved
		return out, true
	case top > r.policy.MultipleMatchThreshold:
		out := newOutcome(MatchMultiple, t, name, top, true)
		out.Candidates = make([]Resolved, 0, len(tied))
		for _, s := range tied {
			out.Candidates = append(out.Candidates, ToResolved(s.Company))
		}
		return out, true
	default:
		if res.provisional == nil {
			out := newOutcome(MatchMultipleLowScore, t, name, top, true)
			res.provisional = &out
		}
		return Outcome{}, false
	}
}

// profileFor fetches the full profile for a search hit, falling back to the
// search item when the profile cannot be retrieved.
func (r *Resolver) profileFor(ctx context.Context, logger *slog.Logger, item registry.Company) registry.Company {
	if item.Number == "" {
		return item
	}
	company, err := r.registry.LookupByID(ctx, item.Number)
	if err != nil || company == nil {
		logLookupFailure(logger, "profile fetch failed; using search result", item.Number, err)
		return item
	}
	return *company
}

// findExact scans for a case-sensitive title match first, then for a match
// ignoring case and embedded control whitespace. Control whitespace is tried
// both removed and as a word break.
func findExact(items []registry.Company, name string) (registry.Company, bool) {
	for _, item := range items {
		if item.Name != "" && item.Name == name {
			return item, true
		}
	}
	normalized := NormalizeName(name)
	spaced := collapseSpace(name)
	for _, item := range items {
		if item.Name == "" {
			continue
		}
		title := NormalizeName(item.Name)
		if textutil.EqualFold(item.Name, name) || title == normalized || textutil.EqualFold(title, normalized) ||
			textutil.EqualFold(collapseSpace(item.Name), spaced) {
			return item, true
		}
	}
	return registry.Company{}, false
}

// collapseSpace treats any run of whitespace, including newlines and tabs,
// as a single space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func logLookupFailure(logger *slog.Logger, msg, query string, err error) {
	if err == nil || errors.Is(err, registry.ErrNotFound) {
		logger.Info(msg, logging.String("query", query), logging.String("reason", "not found"))
		return
	}
	logger.Warn(msg,
		logging.String("query", query),
		logging.Error(err),
		logging.String(logging.FieldErrorKind, services.Classify(err)),
	)
}
