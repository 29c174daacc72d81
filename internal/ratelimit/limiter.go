package ratelimit

import (
	"context"
	"time"

	"github.com/sidrxo/burner-ticketing/internal/clock"
)

// Bucket is per-key token-bucket state. It lives in the store so limits
// hold across stateless service instances, not in process memory.
type Bucket struct {
	Key       string
	Tokens    float64
	UpdatedAt time.Time
}

type BucketStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// GetBucketForUpdate returns nil when the key has never been seen.
	GetBucketForUpdate(ctx context.Context, key string) (*Bucket, error)
	UpsertBucket(ctx context.Context, b Bucket) error
}

// Limiter grants up to capacity actions per key, refilling at refillPerSec.
// The read-modify-write runs under a row lock so concurrent instances
// serialize on the same bucket.
type Limiter struct {
	store        BucketStore
	clock        clock.Clock
	capacity     float64
	refillPerSec float64
}

func NewLimiter(store BucketStore, clk clock.Clock, capacity, refillPerSec float64) *Limiter {
	return &Limiter{
		store:        store,
		clock:        clk,
		capacity:     capacity,
		refillPerSec: refillPerSec,
	}
}

// Allow consumes one token for key if available. A store failure is
// returned as an error, never treated as an allow.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	var allowed bool

	err := l.store.WithTx(ctx, func(txCtx context.Context) error {
		now := l.clock.Now()

		tokens := l.capacity
		bucket, err := l.store.GetBucketForUpdate(txCtx, key)
		if err != nil {
			return err
		}
		if bucket != nil {
			elapsed := now.Sub(bucket.UpdatedAt).Seconds()
			if elapsed < 0 {
				elapsed = 0
			}
			tokens = bucket.Tokens + elapsed*l.refillPerSec
			if tokens > l.capacity {
				tokens = l.capacity
			}
		}

		if tokens >= 1 {
			tokens--
			allowed = true
		}

		return l.store.UpsertBucket(txCtx, Bucket{
			Key:       key,
			Tokens:    tokens,
			UpdatedAt: now,
		})
	})
	if err != nil {
		return false, err
	}
	return allowed, nil
}
