package domain

import "time"

type TicketStatus string

const (
	TicketStatusConfirmed TicketStatus = "confirmed"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusCancelled TicketStatus = "cancelled"
	TicketStatusRefunded  TicketStatus = "refunded"
)

// Ticket is one admission to one event, created exactly once per payment
// reference. Rows are never deleted; terminal statuses are permanent markers.
type Ticket struct {
	ID               string
	EventID          string
	OwnerUserID      string
	TicketNumber     string
	PaymentReference string
	Status           TicketStatus
	PurchasedAt      time.Time
	UsedAt           *time.Time
	ScannedBy        string
	CancelledAt      *time.Time
	RefundedAt       *time.Time
	TransferredFrom  string
	TransferredAt    *time.Time
}
