package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sidrxo/burner-ticketing/internal/app"
	"github.com/sidrxo/burner-ticketing/internal/domain"
)

type Transferrer interface {
	Transfer(ctx context.Context, in app.TransferInput) (domain.Ticket, error)
}

type transferRequest struct {
	RecipientEmail string `json:"recipient_email"`
}

type transferResponse struct {
	TicketID      string     `json:"ticket_id"`
	TicketNumber  string     `json:"ticket_number"`
	EventID       string     `json:"event_id"`
	OwnerUserID   string     `json:"owner_user_id"`
	TransferredAt *time.Time `json:"transferred_at,omitempty"`
}

// HandleTransfer returns a handler for POST /tickets/{id}/transfer.
func HandleTransfer(svc Transferrer) http.HandlerFunc {
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

		var req transferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.RecipientEmail == "" {
			writeError(w, http.StatusBadRequest, codeMissingField, "recipient_email is required")
			return
		}

		ticket, err := svc.Transfer(r.Context(), app.TransferInput{
			TicketID:       ticketID,
			FromUserID:     identity.UserID,
			RecipientEmail: req.RecipientEmail,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, transferResponse{
			TicketID:      ticket.ID,
			TicketNumber:  ticket.TicketNumber,
			EventID:       ticket.EventID,
			OwnerUserID:   ticket.OwnerUserID,
			TransferredAt: ticket.TransferredAt,
		})
	}
}
