package migrations_test

import (
	"context"
	"testing"

	"github.com/sidrxo/burner-ticketing/internal/testutil"
	"github.com/sidrxo/burner-ticketing/migrations"
)

func TestApply(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()

	if err := migrations.Apply(ctx, pool); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	// Re-running must be a no-op.
	if err := migrations.Apply(ctx, pool); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	for _, table := range []string{"events", "tickets", "rate_buckets", "schema_migrations"} {
		var exists bool
		err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`, table,
		).Scan(&exists)
		if err != nil {
			t.Fatalf("check table %s: %v", table, err)
		}
		if !exists {
			t.Fatalf("expected table %s to exist", table)
		}
	}

	var indexExists bool
	err := pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'tickets_one_confirmed_per_holder')`,
	).Scan(&indexExists)
	if err != nil {
		t.Fatalf("check index: %v", err)
	}
	if !indexExists {
		t.Fatalf("expected partial unique index on confirmed holders")
	}
}
