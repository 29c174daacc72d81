package domain

type Role string

const (
	RoleUser       Role = "user"
	RoleScanner    Role = "scanner"
	RoleVenueAdmin Role = "venueAdmin"
	RoleSiteAdmin  Role = "siteAdmin"
)

// Identity is the verified claim set supplied by the identity provider.
// Scanner and venueAdmin roles carry the venue they are bound to.
type Identity struct {
	UserID  string
	Role    Role
	VenueID string
}
