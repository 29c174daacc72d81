package domain

import "time"

type EventStatus string

const (
	EventStatusActive    EventStatus = "active"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusSoldOut   EventStatus = "soldOut"
)

// Event is the slice of the catalog the core needs: capacity, the sold
// counter it increments, and the venue used for scanner authorization.
type Event struct {
	ID          string
	Name        string
	VenueID     string
	MaxTickets  int
	TicketsSold int
	Status      EventStatus
	StartsAt    time.Time
	CreatedAt   time.Time
}

func (e Event) SoldOut() bool {
	return e.TicketsSold >= e.MaxTickets || e.Status == EventStatusSoldOut
}
