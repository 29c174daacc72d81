package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sidrxo/burner-ticketing/internal/domain"
)

type TransferRepository struct {
	pool *pgxpool.Pool
}

func NewTransferRepository(pool *pgxpool.Pool) *TransferRepository {
	return &TransferRepository{pool: pool}
}

func (r *TransferRepository) FindTicketByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	t, err := scanTicket(r.queryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, wrapStoreErr("find ticket by id", err)
	}
	return &t, nil
}

func (r *TransferRepository) FindConfirmedTicket(ctx context.Context, eventID, userID string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets
WHERE event_id = $1 AND owner_user_id = $2 AND status = 'confirmed'`

	t, err := scanTicket(r.queryRow(ctx, query, eventID, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, wrapStoreErr("find confirmed ticket", err)
	}
	return &t, nil
}

// ReassignOwner is the guarded ownership move: it applies only while the
// ticket is still confirmed and still held by fromUserID, so a transfer
// racing a redemption wins or fails whole.
func (r *TransferRepository) ReassignOwner(ctx context.Context, ticketID, fromUserID, toUserID string, at time.Time) (bool, error) {
	const stmt = `
UPDATE tickets SET owner_user_id = $3, transferred_from = $2, transferred_at = $4
WHERE id = $1 AND status = 'confirmed' AND owner_user_id = $2`

	tag, err := r.exec(ctx, stmt, ticketID, fromUserID, toUserID, at)
	if err != nil {
		if isUniqueViolation(err) {
			// The partial unique index caught a recipient who gained a
			// confirmed ticket between the pre-check and the write.
			return false, domain.ErrDuplicateTicketHolder
		}
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, wrapStoreErr("reassign owner", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *TransferRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *TransferRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
