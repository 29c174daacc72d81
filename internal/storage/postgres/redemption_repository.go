package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sidrxo/burner-ticketing/internal/domain"
)

type RedemptionRepository struct {
	pool *pgxpool.Pool
}

func NewRedemptionRepository(pool *pgxpool.Pool) *RedemptionRepository {
	return &RedemptionRepository{pool: pool}
}

func (r *RedemptionRepository) FindTicketByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	t, err := scanTicket(r.queryRow(ctx, query, id))
	if err != nil {
		// Scan input is operator-typed; a malformed id is just not found.
		if err == pgx.ErrNoRows || isInvalidUUID(err) {
			return nil, nil
		}
		return nil, wrapStoreErr("find ticket by id", err)
	}
	return &t, nil
}

func (r *RedemptionRepository) FindTicketByNumber(ctx context.Context, eventID, number string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE event_id = $1 AND ticket_number = $2`

	t, err := scanTicket(r.queryRow(ctx, query, eventID, number))
	if err != nil {
		if err == pgx.ErrNoRows || isInvalidUUID(err) {
			return nil, nil
		}
		return nil, wrapStoreErr("find ticket by number", err)
	}
	return &t, nil
}

func (r *RedemptionRepository) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	e, err := scanEvent(r.queryRow(ctx, query, eventID))
	if err != nil {
		if err == pgx.ErrNoRows || isInvalidUUID(err) {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, wrapStoreErr("get event", err)
	}
	return e, nil
}

// MarkTicketUsed performs the guarded confirmed→used transition. Zero rows
// affected means another scanner (or an administrative transition) won.
func (r *RedemptionRepository) MarkTicketUsed(ctx context.Context, ticketID, scannerID string, at time.Time) (bool, error) {
	const stmt = `
UPDATE tickets SET status = 'used', used_at = $2, scanned_by = $3
WHERE id = $1 AND status = 'confirmed'`

	tag, err := r.exec(ctx, stmt, ticketID, at, scannerID)
	if err != nil {
		if isInvalidUUID(err) {
			return false, nil
		}
		return false, wrapStoreErr("mark ticket used", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *RedemptionRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *RedemptionRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
