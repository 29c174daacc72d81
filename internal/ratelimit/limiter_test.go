package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/sidrxo/burner-ticketing/internal/clock"
)

func TestLimiter_Allow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("fresh key starts at full capacity", func(t *testing.T) {
		store := newFakeBucketStore()
		limiter := NewLimiter(store, clock.NewFixed(now), 3, 1)

		for i := 0; i < 3; i++ {
			ok, err := limiter.Allow(context.Background(), "scan:s1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !ok {
				t.Fatalf("expected allow on attempt %d", i+1)
			}
		}

		ok, err := limiter.Allow(context.Background(), "scan:s1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ok {
			t.Fatalf("expected deny after capacity exhausted")
		}
	})

	t.Run("tokens refill over time", func(t *testing.T) {
		store := newFakeBucketStore()
		store.buckets["scan:s2"] = Bucket{
			Key:       "scan:s2",
			Tokens:    0,
			UpdatedAt: now.Add(-2 * time.Second),
		}
		limiter := NewLimiter(store, clock.NewFixed(now), 3, 1)

		ok, err := limiter.Allow(context.Background(), "scan:s2")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !ok {
			t.Fatalf("expected allow after refill")
		}
	})

	t.Run("refill never exceeds capacity", func(t *testing.T) {
		store := newFakeBucketStore()
		store.buckets["scan:s3"] = Bucket{
			Key:       "scan:s3",
			Tokens:    0,
			UpdatedAt: now.Add(-time.Hour),
		}
		limiter := NewLimiter(store, clock.NewFixed(now), 2, 1)

		for i := 0; i < 2; i++ {
			ok, err := limiter.Allow(context.Background(), "scan:s3")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !ok {
				t.Fatalf("expected allow on attempt %d", i+1)
			}
		}
		ok, _ := limiter.Allow(context.Background(), "scan:s3")
		if ok {
			t.Fatalf("expected deny once refilled capacity is spent")
		}
	})

	t.Run("keys are independent", func(t *testing.T) {
		store := newFakeBucketStore()
		limiter := NewLimiter(store, clock.NewFixed(now), 1, 0)

		if ok, _ := limiter.Allow(context.Background(), "scan:a"); !ok {
			t.Fatalf("expected allow for key a")
		}
		if ok, _ := limiter.Allow(context.Background(), "scan:b"); !ok {
			t.Fatalf("expected allow for key b")
		}
		if ok, _ := limiter.Allow(context.Background(), "scan:a"); ok {
			t.Fatalf("expected deny for exhausted key a")
		}
	})
}

type fakeBucketStore struct {
	buckets map[string]Bucket
}

func newFakeBucketStore() *fakeBucketStore {
	return &fakeBucketStore{buckets: make(map[string]Bucket)}
}

func (f *fakeBucketStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeBucketStore) GetBucketForUpdate(_ context.Context, key string) (*Bucket, error) {
	b, ok := f.buckets[key]
	if !ok {
		return nil, nil
	}
	copy := b
	return &copy, nil
}

func (f *fakeBucketStore) UpsertBucket(_ context.Context, b Bucket) error {
	f.buckets[b.Key] = b
	return nil
}
