package batch

import (
	"context"
	"errors"
	"slices"
	"strings"

	"chmatch/internal/logging"
	"chmatch/internal/matching"
	"chmatch/internal/postcodes"
	"chmatch/internal/records"
	"chmatch/internal/workbook"
)

// Outcome columns appended to every output sheet.
const (
	ColumnMatchType   = "match_type"
	ColumnConfidence  = "confidence_score"
	ColumnNeedsReview = "needs_manual_review"
	ColumnMatchTier   = "match_tier"
	ColumnError       = "error"
)

const typeColumn = "Company Type"

var outcomeColumns = []string{ColumnMatchType, ColumnConfidence, ColumnNeedsReview, ColumnMatchTier, ColumnError}

// enrichColumn maps a resolved registry field onto an output header. When
// field is set, the header the record already uses for that field wins.
type enrichColumn struct {
	header string
	field  records.Field
	value  func(matching.Resolved) string
}

var enrichColumns = []enrichColumn{
	{"Companies House name\n(or note Sole Trader/ Freelancer)", records.FieldPrimaryName, func(r matching.Resolved) string { return r.Name }},
	{"Company Registration Number", records.FieldIdentifier, func(r matching.Resolved) string { return r.Number }},
	{"Company Status?", "", func(r matching.Resolved) string { return r.Status }},
	{"Date Company Incorporated", records.FieldIncorporationDate, func(r matching.Resolved) string { return r.IncorporatedOn }},
	{"Date Company Dissolved", "", func(r matching.Resolved) string { return r.DissolvedOn }},
	{"Company Industry(s)", "", func(r matching.Resolved) string { return r.SICCodes }},
	{typeColumn, "", func(r matching.Resolved) string { return r.Type }},
	{"Previous Names", "", func(r matching.Resolved) string { return r.PreviousNames }},
	{"Registered Locality", "", func(r matching.Resolved) string { return r.Locality }},
	{"Registered Postcode", records.FieldPostcode, func(r matching.Resolved) string { return r.Postcode }},
}

// layout resolves output header names once per sheet.
type layout struct {
	headers  []string
	enrich   []string
	typeCol  string
	hq       string
	prevHQ   string
	postcode string
}

func (r *Runner) newLayout(sheet *workbook.Sheet) layout {
	probe := records.New(0, sheet.Headers, nil)
	l := layout{headers: slices.Clone(probe.Headers)}
	add := func(header string) {
		if header != "" && !slices.Contains(l.headers, header) {
			l.headers = append(l.headers, header)
		}
	}
	resolve := func(field records.Field, fallback string) string {
		if field != "" {
			if header, ok := r.accessor.Header(probe, field); ok {
				return header
			}
		}
		for _, header := range probe.Headers {
			if strings.EqualFold(strings.Join(strings.Fields(header), " "), strings.Join(strings.Fields(fallback), " ")) {
				return header
			}
		}
		return fallback
	}

	if r.cfg.Workbook.Enrich {
		l.enrich = make([]string, len(enrichColumns))
		for i, col := range enrichColumns {
			l.enrich[i] = resolve(col.field, col.header)
			add(l.enrich[i])
			switch {
			case col.header == typeColumn:
				l.typeCol = l.enrich[i]
			case col.field == records.FieldPostcode:
				l.postcode = l.enrich[i]
			}
		}
		if r.districts != nil {
			l.hq = resolve(records.FieldHeadquarters, r.cfg.Workbook.HeadquartersColumn)
			l.prevHQ = resolve("", r.cfg.Workbook.PreviousHeadquartersColumn)
			add(l.hq)
			add(l.prevHQ)
		}
	}
	for _, col := range outcomeColumns {
		add(col)
	}
	return l
}

// buildOutput renders processed results into output rows: original cells,
// resolved registry fields, headquarters updates and outcome columns.
func (r *Runner) buildOutput(ctx context.Context, sheet *workbook.Sheet, results []Result) workbook.Output {
	l := r.newLayout(sheet)
	out := workbook.Output{
		Sheet:      sheet.Name,
		Headers:    l.headers,
		Rows:       make([]workbook.OutputRow, 0, len(results)),
		ReviewFill: r.cfg.Workbook.ReviewFill,
	}
	districts := make(map[string]string)
	for _, res := range results {
		values := make(map[string]any, len(l.headers))
		for header, v := range res.Record.Values {
			values[header] = v
		}
		if r.cfg.Workbook.Enrich {
			r.enrichRow(values, l, res)
			if r.districts != nil {
				r.updateHeadquarters(ctx, values, l, res, districts)
			}
		}
		o := res.Outcome
		values[ColumnMatchType] = string(o.MatchType)
		values[ColumnConfidence] = o.Confidence
		values[ColumnNeedsReview] = o.NeedsReview
		values[ColumnMatchTier] = string(o.Tier)
		values[ColumnError] = o.Err
		out.Rows = append(out.Rows, workbook.OutputRow{Values: values, Review: o.NeedsReview})
	}
	return out
}

func (r *Runner) enrichRow(values map[string]any, l layout, res Result) {
	if resolved := res.Outcome.Resolved; resolved != nil {
		for i, col := range enrichColumns {
			if v := col.value(*resolved); v != "" {
				values[l.enrich[i]] = v
			}
		}
		return
	}
	name, _ := r.accessor.Get(res.Record, records.FieldPrimaryName)
	values[l.typeCol] = matching.InferCompanyType("", name, r.accessor.RawIdentifier(res.Record), r.accessor.Placeholders())
}

// updateHeadquarters replaces the headquarters cell with the postcode's
// admin district, appending the replaced value to the history column.
func (r *Runner) updateHeadquarters(ctx context.Context, values map[string]any, l layout, res Result, cache map[string]string) {
	postcode := strings.TrimSpace(cellString(values[l.postcode]))
	if postcode == "" || r.accessor.Placeholders().Contains(postcode) {
		return
	}
	key := strings.ToUpper(strings.Join(strings.Fields(postcode), ""))
	district, seen := cache[key]
	if !seen {
		d, err := r.districts.AdminDistrict(ctx, postcode)
		if err != nil && !errors.Is(err, postcodes.ErrNotFound) {
			logging.WithContext(ctx, r.logger).Warn("postcode lookup failed",
				logging.String("postcode", postcode),
				logging.Int("row", res.Record.Row),
				logging.Error(err),
			)
			return
		}
		district = d
		cache[key] = district
	}
	if district == "" {
		return
	}
	current := strings.TrimSpace(cellString(values[l.hq]))
	if r.accessor.Placeholders().Contains(current) {
		current = ""
	}
	if current == district {
		return
	}
	if current != "" {
		history := strings.TrimSpace(cellString(values[l.prevHQ]))
		var entries []string
		if history != "" {
			entries = strings.Split(history, ", ")
		}
		if len(entries) == 0 || entries[len(entries)-1] != current {
			entries = append(entries, current)
		}
		values[l.prevHQ] = strings.Join(entries, ", ")
	}
	values[l.hq] = district
}

func cellString(v any) string {
	s, _ := v.(string)
	return s
}
