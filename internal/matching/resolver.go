package matching

import (
	"context"
	"log/slog"

	"chmatch/internal/logging"
	"chmatch/internal/records"
	"chmatch/internal/registry"
	"chmatch/internal/services"
)

// Registry is the lookup surface the resolver needs. A not-found result is
// reported as an error wrapping registry.ErrNotFound.
type Registry interface {
	LookupByID(ctx context.Context, number string) (*registry.Company, error)
	SearchByName(ctx context.Context, name string) (*registry.SearchResult, error)
}

// tier is one resolution stage. A true result ends the resolution.
type tier struct {
	name Tier
	run  func(ctx context.Context, res *resolution) (Outcome, bool)
}

// resolution is the per-record state threaded through the tiers.
type resolution struct {
	record      records.Record
	primaryName string
	input       Input
	provisional *Outcome
	logger      *slog.Logger
}

// Resolver runs the tiered matching strategy for one record at a time.
type Resolver struct {
	registry Registry
	accessor *records.Accessor
	policy   Policy
	scorer   *Scorer
	logger   *slog.Logger
	tiers    []tier
}

// NewResolver wires a resolver. A nil logger discards output.
func NewResolver(reg Registry, accessor *records.Accessor, policy Policy, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Resolver{
		registry: reg,
		accessor: accessor,
		policy:   policy,
		scorer:   NewScorer(policy),
		logger:   logging.NewComponentLogger(logger, "matching"),
	}
	r.tiers = []tier{
		{name: TierIdentifier, run: r.identifierTier},
		{name: TierPrimaryName, run: r.primaryNameTier},
		{name: TierFallbackName, run: r.fallbackNameTier},
	}
	return r
}

// Scorer exposes the resolver's scorer for ad-hoc ranking.
func (r *Resolver) Scorer() *Scorer {
	return r.scorer
}

// Resolve returns exactly one outcome for rec. Registry failures fall through
// to the next tier and never surface as errors.
func (r *Resolver) Resolve(ctx context.Context, rec records.Record) Outcome {
	res := r.newResolution(ctx, rec)
	for _, t := range r.tiers {
		if err := ctx.Err(); err != nil {
			return ErrorOutcome(err)
		}
		tierCtx := services.WithTier(ctx, string(t.name))
		if out, ok := t.run(tierCtx, res); ok {
			r.logDecision(tierCtx, out)
			return out
		}
	}
	if res.provisional != nil {
		r.logDecision(ctx, *res.provisional)
		return *res.provisional
	}
	out := NoMatch()
	r.logDecision(ctx, out)
	return out
}

func (r *Resolver) newResolution(ctx context.Context, rec records.Record) *resolution {
	res := &resolution{
		record: rec,
		logger: logging.WithContext(ctx, r.logger),
	}
	res.primaryName, _ = r.accessor.Get(rec, records.FieldPrimaryName)
	res.input.Headquarters, _ = r.accessor.Get(rec, records.FieldHeadquarters)
	if raw, ok := r.accessor.Get(rec, records.FieldIncorporationDate); ok {
		if iso, ok := records.ParseDate(raw); ok {
			res.input.IncorporationDate = iso
		} else {
			res.logger.Debug("incorporation date not parseable; date scoring skipped", logging.String("value", raw))
		}
	}
	return res
}

func (r *Resolver) logDecision(ctx context.Context, out Outcome) {
	logger := logging.WithContext(ctx, r.logger)
	attrs := logging.DecisionAttrs("match", string(out.MatchType), string(out.Tier))
	attrs = append(attrs,
		logging.Int("confidence", out.Confidence),
		logging.Bool("needs_review", out.NeedsReview),
	)
	if out.Resolved != nil {
		attrs = append(attrs,
			logging.String("company_number", out.Resolved.Number),
			logging.String("company_name", out.Resolved.Name),
		)
	}
	if len(out.Candidates) > 0 {
		attrs = append(attrs, logging.Int("candidates", len(out.Candidates)))
	}
	if out.NeedsReview {
		logger.Info("record needs manual review", logging.Args(attrs...)...)
		return
	}
	logger.Info("record matched", logging.Args(attrs...)...)
}
