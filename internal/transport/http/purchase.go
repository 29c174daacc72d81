package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sidrxo/burner-ticketing/internal/app"
	"github.com/sidrxo/burner-ticketing/internal/domain"
)

// Purchaser is the minimal interface purchase handlers need.
type Purchaser interface {
	CreatePaymentIntent(ctx context.Context, eventID, userID string) (domain.PaymentIntent, error)
	ConfirmPurchase(ctx context.Context, in app.ConfirmPurchaseInput) (app.ConfirmPurchaseResult, error)
}

type createIntentRequest struct {
	EventID string `json:"event_id"`
}

type createIntentResponse struct {
	PaymentReference string `json:"payment_reference"`
	ClientSecret     string `json:"client_secret"`
}

// HandleCreateIntent returns a handler for POST /purchases/intent.
func HandleCreateIntent(svc Purchaser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}

		var req createIntentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.EventID == "" {
			writeError(w, http.StatusBadRequest, codeMissingField, "event_id is required")
			return
		}

		intent, err := svc.CreatePaymentIntent(r.Context(), req.EventID, identity.UserID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, createIntentResponse{
			PaymentReference: intent.PaymentReference,
			ClientSecret:     intent.ClientSecret,
		})
	}
}

type confirmPurchaseRequest struct {
	PaymentReference string `json:"payment_reference"`
}

type ticketResponse struct {
	TicketID     string    `json:"ticket_id"`
	TicketNumber string    `json:"ticket_number"`
	EventID      string    `json:"event_id"`
	Status       string    `json:"status"`
	PurchasedAt  time.Time `json:"purchased_at"`
}

// HandleConfirmPurchase returns a handler for POST /purchases/confirm.
// Replays of the same payment reference answer 200 with the same ticket.
func HandleConfirmPurchase(svc Purchaser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}

		var req confirmPurchaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.PaymentReference == "" {
			writeError(w, http.StatusBadRequest, codeMissingField, "payment_reference is required")
			return
		}

		res, err := svc.ConfirmPurchase(r.Context(), app.ConfirmPurchaseInput{
			PaymentReference: req.PaymentReference,
			CallerUserID:     identity.UserID,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		writeJSON(w, status, ticketResponse{
			TicketID:     res.Ticket.ID,
			TicketNumber: res.Ticket.TicketNumber,
			EventID:      res.Ticket.EventID,
			Status:       string(res.Ticket.Status),
			PurchasedAt:  res.Ticket.PurchasedAt,
		})
	}
}
