package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sidrxo/burner-ticketing/internal/ratelimit"
)

// BucketRepository persists rate-limit buckets so limits hold across
// stateless instances. The FOR UPDATE read serializes concurrent scanners
// hitting the same bucket.
type BucketRepository struct {
	pool *pgxpool.Pool
}

func NewBucketRepository(pool *pgxpool.Pool) *BucketRepository {
	return &BucketRepository{pool: pool}
}

func (r *BucketRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *BucketRepository) GetBucketForUpdate(ctx context.Context, key string) (*ratelimit.Bucket, error) {
	const query = `SELECT key, tokens, updated_at FROM rate_buckets WHERE key = $1 FOR UPDATE`

	var b ratelimit.Bucket
	err := r.queryRow(ctx, query, key).Scan(&b.Key, &b.Tokens, &b.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, wrapStoreErr("get bucket", err)
	}
	return &b, nil
}

func (r *BucketRepository) UpsertBucket(ctx context.Context, b ratelimit.Bucket) error {
	const stmt = `
INSERT INTO rate_buckets (key, tokens, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET tokens = EXCLUDED.tokens, updated_at = EXCLUDED.updated_at`

	if _, err := r.exec(ctx, stmt, b.Key, b.Tokens, b.UpdatedAt); err != nil {
		return wrapStoreErr("upsert bucket", err)
	}
	return nil
}

func (r *BucketRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *BucketRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
