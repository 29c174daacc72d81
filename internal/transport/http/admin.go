package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sidrxo/burner-ticketing/internal/app"
	"github.com/sidrxo/burner-ticketing/internal/domain"
)

type CatalogAdmin interface {
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

type createEventRequest struct {
	Name       string     `json:"name"`
	VenueID    string     `json:"venue_id"`
	MaxTickets int        `json:"max_tickets"`
	StartsAt   *time.Time `json:"starts_at,omitempty"`
}

type eventResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	VenueID     string    `json:"venue_id"`
	MaxTickets  int       `json:"max_tickets"`
	TicketsSold int       `json:"tickets_sold"`
	Status      string    `json:"status"`
	StartsAt    time.Time `json:"starts_at"`
}

// HandleAdminCreateEvent returns a handler for POST /admin/events.
func HandleAdminCreateEvent(svc CatalogAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		event, err := svc.CreateEvent(r.Context(), app.CreateEventInput{
			Name:       req.Name,
			VenueID:    req.VenueID,
			MaxTickets: req.MaxTickets,
			StartsAt:   req.StartsAt,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toEventResponse(event))
	}
}

// HandleAdminListEvents returns a handler for GET /admin/events.
func HandleAdminListEvents(svc CatalogAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := svc.ListEvents(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}

		out := make([]eventResponse, 0, len(events))
		for _, e := range events {
			out = append(out, toEventResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toEventResponse(e domain.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		Name:        e.Name,
		VenueID:     e.VenueID,
		MaxTickets:  e.MaxTickets,
		TicketsSold: e.TicketsSold,
		Status:      string(e.Status),
		StartsAt:    e.StartsAt,
	}
}
