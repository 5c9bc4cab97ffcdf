package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chmatch/internal/registry"
)

var _ registry.Cache = (*Store)(nil)

// GetRegistryResponse returns a cached registry body younger than maxAge.
// maxAge <= 0 accepts any age.
func (s *Store) GetRegistryResponse(ctx context.Context, key string, maxAge time.Duration) ([]byte, bool, error) {
	var (
		body       []byte
		fetchedRaw string
	)
	err := s.db.QueryRowContext(ctx, `SELECT body, fetched_at FROM registry_cache WHERE cache_key = ?`, key).Scan(&body, &fetchedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read registry cache: %w", err)
	}
	if maxAge > 0 {
		fetched, err := parseTimeString(fetchedRaw)
		if err != nil || time.Since(fetched) > maxAge {
			return nil, false, nil
		}
	}
	return body, true, nil
}

// PutRegistryResponse stores body under key, replacing any earlier entry.
func (s *Store) PutRegistryResponse(ctx context.Context, key string, body []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO registry_cache (cache_key, body, fetched_at) VALUES (?, ?, ?)`,
		key, body, time.Now().UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("write registry cache: %w", err)
	}
	return nil
}

// ClearCache removes every cached registry response.
func (s *Store) ClearCache(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM registry_cache`)
	if err != nil {
		return 0, fmt.Errorf("clear registry cache: %w", err)
	}
	return res.RowsAffected()
}

// PruneCache removes cached responses older than maxAge.
func (s *Store) PruneCache(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge).Format(timestampLayout)
	res, err := s.db.ExecContext(ctx, `DELETE FROM registry_cache WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune registry cache: %w", err)
	}
	return res.RowsAffected()
}
