package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"chmatch/internal/matching"
)

// RecordOutcome stores the outcome for one row of a run, replacing any
// earlier outcome for the same row.
func (s *Store) RecordOutcome(ctx context.Context, runID string, row int, out matching.Outcome) error {
	payload, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	var number, name string
	if out.Resolved != nil {
		number, name = out.Resolved.Number, out.Resolved.Name
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO outcomes (
            run_id, row, match_type, confidence, needs_review, tier, query,
            company_number, company_name, error_message, outcome_json, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		row,
		string(out.MatchType),
		out.Confidence,
		boolToInt(out.NeedsReview),
		nullableString(string(out.Tier)),
		nullableString(out.Query),
		nullableString(number),
		nullableString(name),
		nullableString(out.Err),
		string(payload),
		time.Now().UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// ListOutcomes returns a run's outcomes in row order.
func (s *Store) ListOutcomes(ctx context.Context, runID string, reviewOnly bool) ([]OutcomeRecord, error) {
	query := `SELECT run_id, row, outcome_json, created_at FROM outcomes WHERE run_id = ?`
	if reviewOnly {
		query += ` AND needs_review = 1`
	}
	query += ` ORDER BY row`
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	var out []OutcomeRecord
	for rows.Next() {
		var (
			rec        OutcomeRecord
			payload    string
			createdRaw string
		)
		if err := rows.Scan(&rec.RunID, &rec.Row, &payload, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &rec.Outcome); err != nil {
			return nil, fmt.Errorf("decode outcome row %d: %w", rec.Row, err)
		}
		if created, err := parseTimeString(createdRaw); err == nil {
			rec.CreatedAt = created
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
