package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const runColumns = "id, input_path, sheet, output_path, status, started_at, finished_at, total, processed, needs_review, errors, counts_json, error_message"

// CreateRun inserts a running batch run and returns it.
func (s *Store) CreateRun(ctx context.Context, inputPath, sheet, outputPath string, total int) (*Run, error) {
	run := &Run{
		ID:         newRunID(),
		InputPath:  inputPath,
		Sheet:      sheet,
		OutputPath: outputPath,
		Status:     RunRunning,
		StartedAt:  time.Now().UTC(),
		Total:      total,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input_path, sheet, output_path, status, started_at, total)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.InputPath,
		run.Sheet,
		nullableString(run.OutputPath),
		run.Status,
		run.StartedAt.Format(timestampLayout),
		run.Total,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun records the final status and tallies of run.
func (s *Store) FinishRun(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}
	counts, err := json.Marshal(run.Counts)
	if err != nil {
		return fmt.Errorf("marshal counts: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs
         SET status = ?, finished_at = ?, total = ?, processed = ?, needs_review = ?,
             errors = ?, counts_json = ?, error_message = ?, output_path = ?
         WHERE id = ?`,
		run.Status,
		run.FinishedAt.Format(timestampLayout),
		run.Total,
		run.Processed,
		run.NeedsReview,
		run.Errors,
		string(counts),
		nullableString(run.ErrorMessage),
		nullableString(run.OutputPath),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run: run %s not found", run.ID)
	}
	return nil
}

// GetRun fetches a run by full id or unique prefix. A missing run returns nil.
func (s *Store) GetRun(ctx context.Context, idOrPrefix string) (*Run, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY started_at LIMIT 2`,
		idOrPrefix, escapeLike(idOrPrefix)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.ID == idOrPrefix {
			return run, nil
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousRunID, idOrPrefix)
	}
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// MarkInterrupted fails runs left in the running state by a crashed process.
func (s *Store) MarkInterrupted(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, error_message = ? WHERE status = ?`,
		RunFailed,
		time.Now().UTC().Format(timestampLayout),
		"interrupted",
		RunRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("mark interrupted runs: %w", err)
	}
	return res.RowsAffected()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		outputPath  sql.NullString
		status      string
		startedRaw  string
		finishedRaw sql.NullString
		countsRaw   sql.NullString
		errorMsg    sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.InputPath,
		&run.Sheet,
		&outputPath,
		&status,
		&startedRaw,
		&finishedRaw,
		&run.Total,
		&run.Processed,
		&run.NeedsReview,
		&run.Errors,
		&countsRaw,
		&errorMsg,
	); err != nil {
		return nil, err
	}
	run.OutputPath = outputPath.String
	run.Status = RunStatus(status)
	run.ErrorMessage = errorMsg.String
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finished, err := parseTimeString(finishedRaw.String); err == nil {
		run.FinishedAt = finished
	}
	if countsRaw.Valid && countsRaw.String != "" && countsRaw.String != "null" {
		if err := json.Unmarshal([]byte(countsRaw.String), &run.Counts); err != nil {
			return nil, fmt.Errorf("decode counts: %w", err)
		}
	}
	return &run, nil
}
