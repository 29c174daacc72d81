package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sidrxo/burner-ticketing/internal/domain"
)

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) CreateEvent(ctx context.Context, event domain.Event) error {
	const stmt = `
INSERT INTO events (id, name, venue_id, max_tickets, tickets_sold, status, starts_at, created_at)
VALUES ($1, $2, $3, $4, 0, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, stmt,
		event.ID,
		event.Name,
		event.VenueID,
		event.MaxTickets,
		event.Status,
		event.StartsAt,
		event.CreatedAt,
	)
	if err != nil {
		return wrapStoreErr("create event", err)
	}
	return nil
}

func (r *AdminRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events ORDER BY starts_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, wrapStoreErr("list events", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr("list events", err)
	}
	return events, nil
}
