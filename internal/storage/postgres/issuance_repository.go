package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sidrxo/burner-ticketing/internal/domain"
)

type IssuanceRepository struct {
	pool *pgxpool.Pool
}

func NewIssuanceRepository(pool *pgxpool.Pool) *IssuanceRepository {
	return &IssuanceRepository{pool: pool}
}

func (r *IssuanceRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *IssuanceRepository) FindTicketByPaymentReference(ctx context.Context, reference string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE payment_reference = $1`

	t, err := scanTicket(r.queryRow(ctx, query, reference))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, wrapStoreErr("find ticket by payment reference", err)
	}
	return &t, nil
}

func (r *IssuanceRepository) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
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

// ReserveCapacity is the atomic check-and-increment: it succeeds only when
// the event is active and below capacity, so the (N+1)th concurrent
// reservation against a full event always fails regardless of arrival order.
func (r *IssuanceRepository) ReserveCapacity(ctx context.Context, eventID string) error {
	const stmt = `
UPDATE events SET tickets_sold = tickets_sold + 1
WHERE id = $1 AND status = 'active' AND tickets_sold < max_tickets`

	tag, err := r.exec(ctx, stmt, eventID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrEventNotFound
		}
		return wrapStoreErr("reserve capacity", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Zero rows: find out which precondition failed.
	event, err := r.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event.Status == domain.EventStatusCancelled {
		return domain.ErrEventCancelled
	}
	return domain.ErrCapacityExceeded
}

func (r *IssuanceRepository) CreateTicket(ctx context.Context, t domain.Ticket) error {
	const stmt = `
INSERT INTO tickets (id, event_id, owner_user_id, ticket_number, payment_reference, status, purchased_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.exec(ctx, stmt,
		t.ID,
		t.EventID,
		t.OwnerUserID,
		t.TicketNumber,
		t.PaymentReference,
		t.Status,
		t.PurchasedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			switch violatedConstraint(err) {
			case "tickets_payment_reference_key":
				return domain.ErrDuplicatePaymentRef
			case "tickets_one_confirmed_per_holder":
				return domain.ErrDuplicateTicketHolder
			default:
				// Ticket-number collision: rare, safe to retry the chain.
				return fmt.Errorf("create ticket: %w: ticket number collision", domain.ErrStoreUnavailable)
			}
		}
		return wrapStoreErr("create ticket", err)
	}
	return nil
}

func (r *IssuanceRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *IssuanceRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
