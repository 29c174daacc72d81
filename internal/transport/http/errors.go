package http

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/sidrxo/burner-ticketing/internal/domain"
)

const (
	codeInvalidRequestBody = "invalid_request_body"
	codeMissingField       = "missing_required_field"
	codeUnauthorized       = "unauthorized"
	codeForbidden          = "forbidden"
	codePaymentNotVerified = "payment_not_verified"
	codePaymentOwner       = "payment_owner_mismatch"
	codeEventNotFound      = "event_not_found"
	codeEventCancelled     = "event_cancelled"
	codeCapacityExceeded   = "capacity_exceeded"
	codeTicketNotFound     = "ticket_not_found"
	codeNotTicketOwner     = "not_ticket_owner"
	codeSelfTransfer       = "self_transfer"
	codeNotTransferable    = "ticket_not_transferable"
	codeDuplicateHolder    = "recipient_already_holds_ticket"
	codeRecipientNotFound  = "recipient_not_found"
	codeInvalidID          = "invalid_id"
	codeEventNameRequired  = "event_name_required"
	codeVenueRequired      = "venue_required"
	codeInvalidCapacity    = "invalid_capacity"
	codeStoreUnavailable   = "store_unavailable"
	codeGatewayUnavailable = "gateway_unavailable"
	codeInternalError      = "internal_error"
	codeNotFoundRoute      = "not_found"
	codeMethodNotAllowed   = "method_not_allowed"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

// writeDomainError maps domain errors onto stable machine-readable codes.
// Redemption outcomes never pass through here; they are 200-level results.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPaymentNotVerified):
		writeError(w, http.StatusPaymentRequired, codePaymentNotVerified, err.Error())
	case errors.Is(err, domain.ErrPaymentOwnerMismatch):
		writeError(w, http.StatusForbidden, codePaymentOwner, err.Error())
	case errors.Is(err, domain.ErrEventNotFound):
		writeError(w, http.StatusNotFound, codeEventNotFound, err.Error())
	case errors.Is(err, domain.ErrEventCancelled):
		writeError(w, http.StatusConflict, codeEventCancelled, err.Error())
	case errors.Is(err, domain.ErrCapacityExceeded):
		writeError(w, http.StatusConflict, codeCapacityExceeded, err.Error())
	case errors.Is(err, domain.ErrTicketNotFound):
		writeError(w, http.StatusNotFound, codeTicketNotFound, err.Error())
	case errors.Is(err, domain.ErrNotTicketOwner):
		writeError(w, http.StatusForbidden, codeNotTicketOwner, err.Error())
	case errors.Is(err, domain.ErrSelfTransfer):
		writeError(w, http.StatusBadRequest, codeSelfTransfer, err.Error())
	case errors.Is(err, domain.ErrTicketNotTransferable):
		writeError(w, http.StatusConflict, codeNotTransferable, err.Error())
	case errors.Is(err, domain.ErrDuplicateTicketHolder):
		writeError(w, http.StatusConflict, codeDuplicateHolder, err.Error())
	case errors.Is(err, domain.ErrRecipientNotFound):
		writeError(w, http.StatusNotFound, codeRecipientNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrEventNameRequired):
		writeError(w, http.StatusBadRequest, codeEventNameRequired, err.Error())
	case errors.Is(err, domain.ErrVenueRequired):
		writeError(w, http.StatusBadRequest, codeVenueRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidCapacity):
		writeError(w, http.StatusBadRequest, codeInvalidCapacity, err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeStoreUnavailable, "store temporarily unavailable")
	case errors.Is(err, domain.ErrGatewayUnavailable):
		writeError(w, http.StatusBadGateway, codeGatewayUnavailable, "payment gateway unavailable")
	default:
		log.WithError(err).Error("unhandled service error")
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
