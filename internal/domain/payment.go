package domain

// PaymentStatus mirrors the gateway's lifecycle for a payment intent.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusRefunded  PaymentStatus = "refunded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment is the authoritative record fetched from the gateway on every
// use. The reference is the idempotency key for ticket issuance; the
// metadata binds the payment to the event and purchaser it was created for.
type Payment struct {
	Reference string
	Amount    int64
	Currency  string
	Status    PaymentStatus
	EventID   string
	UserID    string
}

// PaymentIntent is what a client needs to complete checkout with the
// gateway: the reference it will later confirm with, and the secret the
// gateway SDK consumes.
type PaymentIntent struct {
	PaymentReference string
	ClientSecret     string
}

// RefundReason identifies why a compensating refund was issued.
type RefundReason string

const (
	RefundReasonEventNotFound    RefundReason = "event_not_found"
	RefundReasonEventCancelled   RefundReason = "event_cancelled"
	RefundReasonCapacityExceeded RefundReason = "capacity_exceeded"
	RefundReasonDuplicateHolder  RefundReason = "duplicate_holder"
	RefundReasonStoreFailure     RefundReason = "store_failure"
)
