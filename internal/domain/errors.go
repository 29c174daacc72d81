package domain

import "errors"

var (
	ErrPaymentNotVerified    = errors.New("payment is not in succeeded state")
	ErrPaymentOwnerMismatch  = errors.New("payment belongs to a different user")
	ErrEventNotFound         = errors.New("event not found")
	ErrEventCancelled        = errors.New("event is cancelled")
	ErrCapacityExceeded      = errors.New("event capacity exceeded")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrDuplicatePaymentRef   = errors.New("ticket already exists for payment reference")
	ErrDuplicateTicketHolder = errors.New("recipient already holds a confirmed ticket for this event")
	ErrNotTicketOwner        = errors.New("caller does not own this ticket")
	ErrSelfTransfer          = errors.New("cannot transfer a ticket to its current owner")
	ErrTicketNotTransferable = errors.New("ticket is not in a transferable state")
	ErrRecipientNotFound     = errors.New("recipient not found")
	ErrInvalidID             = errors.New("invalid id")
	ErrEventNameRequired     = errors.New("event name required")
	ErrVenueRequired         = errors.New("venue id required")
	ErrInvalidCapacity       = errors.New("capacity must be positive")
	ErrStoreUnavailable      = errors.New("store temporarily unavailable")
	ErrGatewayUnavailable    = errors.New("payment gateway unavailable")
)
