package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	log "github.com/sirupsen/logrus"

	"github.com/sidrxo/burner-ticketing/internal/domain"
)

type identityKey struct{}

// Authenticator verifies bearer tokens issued by the identity provider and
// places the verified claim set in the request context. The core trusts
// these claims as-is; token issuance lives elsewhere.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "authorization header required")
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid authorization format")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			log.WithError(err).Warn("invalid bearer token")
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid token claims")
			return
		}

		userID, _ := claims["sub"].(string)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "subject claim missing")
			return
		}
		role, _ := claims["role"].(string)
		if role == "" {
			role = string(domain.RoleUser)
		}
		venueID, _ := claims["venue_id"].(string)

		identity := domain.Identity{
			UserID:  userID,
			Role:    domain.Role(role),
			VenueID: venueID,
		}
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
	})
}

func withIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func identityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(domain.Identity)
	return id, ok
}

// RequireRole gates a subtree on one of the given roles. Venue binding is
// checked later by the authorization policy, not here.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := identityFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
				return
			}
			if _, ok := allowed[identity.Role]; !ok {
				writeError(w, http.StatusForbidden, codeForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
