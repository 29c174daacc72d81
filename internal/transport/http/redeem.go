package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sidrxo/burner-ticketing/internal/domain"
)

type Redeemer interface {
	Redeem(ctx context.Context, lookup domain.TicketLookup, identity domain.Identity) (domain.ScanResult, error)
}

type redeemRequest struct {
	TicketID     string `json:"ticket_id,omitempty"`
	TicketNumber string `json:"ticket_number,omitempty"`
	EventID      string `json:"event_id,omitempty"`
}

type redeemResponse struct {
	Outcome       string     `json:"outcome"`
	TicketID      string     `json:"ticket_id,omitempty"`
	TicketNumber  string     `json:"ticket_number,omitempty"`
	ScannedBy     string     `json:"scanned_by,omitempty"`
	ScannedAt     *time.Time `json:"scanned_at,omitempty"`
	ActualEventID string     `json:"actual_event_id,omitempty"`
}

// HandleRedeem returns a handler for POST /redeem. Every business outcome,
// including rejections, is HTTP 200 with the outcome in the body so the
// scanner app can show context; only transport and infrastructure failures
// use error statuses.
func HandleRedeem(svc Redeemer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}

		var req redeemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.TicketID == "" && (req.TicketNumber == "" || req.EventID == "") {
			writeError(w, http.StatusBadRequest, codeMissingField, "ticket_id or ticket_number+event_id is required")
			return
		}

		result, err := svc.Redeem(r.Context(), domain.TicketLookup{
			TicketID:     req.TicketID,
			TicketNumber: req.TicketNumber,
			EventID:      req.EventID,
		}, identity)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeScanResult(w, result)
	}
}

// HandleRedeemByID returns a handler for POST /tickets/{id}/redeem, the
// QR-scan path where the ticket id comes straight from the code.
func HandleRedeemByID(svc Redeemer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}

		ticketID := chi.URLParam(r, "id")
		if ticketID == "" {
			writeError(w, http.StatusBadRequest, codeMissingField, "ticket id is required")
			return
		}

		result, err := svc.Redeem(r.Context(), domain.TicketLookup{TicketID: ticketID}, identity)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeScanResult(w, result)
	}
}

func writeScanResult(w http.ResponseWriter, result domain.ScanResult) {
	writeJSON(w, http.StatusOK, redeemResponse{
		Outcome:       string(result.Outcome),
		TicketID:      result.TicketID,
		TicketNumber:  result.TicketNumber,
		ScannedBy:     result.ScannedBy,
		ScannedAt:     result.ScannedAt,
		ActualEventID: result.ActualEventID,
	})
}
