package app

import "github.com/sidrxo/burner-ticketing/internal/domain"

// Action names something a caller wants to do to a venue-scoped resource.
type Action string

const (
	ActionRedeemTicket Action = "redeem_ticket"
	ActionManageEvents Action = "manage_events"
)

// Authorize is the pure venue-scoped policy: siteAdmin may do anything;
// scanner and venueAdmin may redeem only at the venue they are bound to;
// only siteAdmin manages the catalog. No store access, so it is trivially
// unit-testable.
func Authorize(identity domain.Identity, action Action, venueID string) bool {
	if identity.Role == domain.RoleSiteAdmin {
		return true
	}
	switch action {
	case ActionRedeemTicket:
		switch identity.Role {
		case domain.RoleScanner, domain.RoleVenueAdmin:
			return identity.VenueID != "" && identity.VenueID == venueID
		}
		return false
	case ActionManageEvents:
		return false
	}
	return false
}
