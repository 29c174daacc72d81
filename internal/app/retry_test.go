package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sidrxo/burner-ticketing/internal/domain"
)

func TestRetryTransient(t *testing.T) {
	t.Parallel()

	t.Run("returns nil on first success", func(t *testing.T) {
		calls := 0
		err := retryTransient(context.Background(), func() error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("expected nil, got %v", err)
		}
		if calls != 1 {
			t.Fatalf("expected one call, got %d", calls)
		}
	})

	t.Run("semantic errors are not retried", func(t *testing.T) {
		calls := 0
		err := retryTransient(context.Background(), func() error {
			calls++
			return domain.ErrCapacityExceeded
		})
		if !errors.Is(err, domain.ErrCapacityExceeded) {
			t.Fatalf("expected ErrCapacityExceeded, got %v", err)
		}
		if calls != 1 {
			t.Fatalf("expected one call, got %d", calls)
		}
	})

	t.Run("transient failures retry and then succeed", func(t *testing.T) {
		calls := 0
		err := retryTransient(context.Background(), func() error {
			calls++
			if calls < 3 {
				return fmt.Errorf("deadlock: %w", domain.ErrStoreUnavailable)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("expected success after retries, got %v", err)
		}
		if calls != 3 {
			t.Fatalf("expected three calls, got %d", calls)
		}
	})

	t.Run("gives up after the attempt budget", func(t *testing.T) {
		calls := 0
		err := retryTransient(context.Background(), func() error {
			calls++
			return domain.ErrStoreUnavailable
		})
		if !errors.Is(err, domain.ErrStoreUnavailable) {
			t.Fatalf("expected ErrStoreUnavailable, got %v", err)
		}
		if calls != storeRetryAttempts {
			t.Fatalf("expected %d calls, got %d", storeRetryAttempts, calls)
		}
	})

	t.Run("cancelled context stops the retry loop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := retryTransient(ctx, func() error {
			calls++
			cancel()
			return domain.ErrStoreUnavailable
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if calls != 1 {
			t.Fatalf("expected one call, got %d", calls)
		}
	})
}
