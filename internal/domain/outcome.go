package domain

import "time"

// ScanOutcome is the closed set of redemption results. Every rejected scan
// is a normal outcome the scanning device can display, not a transport error.
type ScanOutcome string

const (
	ScanSuccess          ScanOutcome = "success"
	ScanAlreadyUsed      ScanOutcome = "already_used"
	ScanWrongEvent       ScanOutcome = "wrong_event"
	ScanCancelled        ScanOutcome = "cancelled"
	ScanRefunded         ScanOutcome = "refunded"
	ScanNotFound         ScanOutcome = "not_found"
	ScanPermissionDenied ScanOutcome = "permission_denied"
	ScanRateLimited      ScanOutcome = "rate_limited"
)

// ScanResult carries the outcome plus the provenance an operator needs:
// for AlreadyUsed, who scanned the ticket and when; for WrongEvent, the
// event the ticket actually belongs to.
type ScanResult struct {
	Outcome       ScanOutcome
	TicketID      string
	TicketNumber  string
	ScannedBy     string
	ScannedAt     *time.Time
	ActualEventID string
}

// TicketLookup identifies a ticket at scan time: by id, or by the
// human-readable number a door operator types in together with the event
// they are scanning for.
type TicketLookup struct {
	TicketID     string
	TicketNumber string
	EventID      string
}
