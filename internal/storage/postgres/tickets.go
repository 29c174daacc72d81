package postgres

import (
	"github.com/jackc/pgx/v5"

	"github.com/sidrxo/burner-ticketing/internal/domain"
)

// ticketColumns is the select list every ticket query shares. Nullable
// text columns are coalesced so rows scan into plain strings.
const ticketColumns = `
id, event_id, owner_user_id, ticket_number, payment_reference, status,
purchased_at, used_at, COALESCE(scanned_by, ''), cancelled_at, refunded_at,
COALESCE(transferred_from, ''), transferred_at`

func scanTicket(row pgx.Row) (domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(
		&t.ID,
		&t.EventID,
		&t.OwnerUserID,
		&t.TicketNumber,
		&t.PaymentReference,
		&t.Status,
		&t.PurchasedAt,
		&t.UsedAt,
		&t.ScannedBy,
		&t.CancelledAt,
		&t.RefundedAt,
		&t.TransferredFrom,
		&t.TransferredAt,
	)
	return t, err
}

const eventColumns = `id, name, venue_id, max_tickets, tickets_sold, status, starts_at, created_at`

func scanEvent(row pgx.Row) (domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.VenueID,
		&e.MaxTickets,
		&e.TicketsSold,
		&e.Status,
		&e.StartsAt,
		&e.CreatedAt,
	)
	return e, err
}
