package app

import (
	"context"
	"errors"
	"time"

	"github.com/sidrxo/burner-ticketing/internal/domain"
)

const (
	storeRetryAttempts = 3
	storeRetryBase     = 50 * time.Millisecond
)

// retryTransient retries fn on ErrStoreUnavailable with exponential
// backoff. Semantic errors (capacity, ownership, state) pass through on
// the first occurrence and are never retried.
func retryTransient(ctx context.Context, fn func() error) error {
	backoff := storeRetryBase
	var err error
	for attempt := 0; attempt < storeRetryAttempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrStoreUnavailable) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
