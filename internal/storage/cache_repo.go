package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// CacheRepo backs the answer cache with the query_cache table. Rows past
// expires_at are invisible to Get and removed by DeleteExpired.
type CacheRepo struct {
	db *DB
}

func NewCacheRepo(db *DB) *CacheRepo {
	return &CacheRepo{db: db}
}

func (r *CacheRepo) Get(ctx context.Context, hash string) ([]byte, bool, error) {
	var payload []byte
	err := r.db.Pool.QueryRow(ctx, `SELECT payload FROM query_cache WHERE query_hash=$1 AND expires_at > NOW()`, hash).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cache entry: %w", err)
	}
	return payload, true, nil
}

func (r *CacheRepo) Set(ctx context.Context, hash, query string, payload []byte, expiresAt time.Time) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO query_cache (query_hash, query, payload, created_at, expires_at)
VALUES ($1, $2, $3, NOW(), $4)
ON CONFLICT (query_hash)
DO UPDATE SET
  query = EXCLUDED.query,
  payload = EXCLUDED.payload,
  created_at = EXCLUDED.created_at,
  expires_at = EXCLUDED.expires_at`,
		hash, query, payload, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("put cache entry: %w", err)
	}
	return nil
}

func (r *CacheRepo) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM query_cache WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired cache entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *CacheRepo) Purge(ctx context.Context) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM query_cache`); err != nil {
		return fmt.Errorf("purge cache: %w", err)
	}
	return nil
}
