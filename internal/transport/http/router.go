package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sidrxo/burner-ticketing/internal/domain"
	"github.com/sidrxo/burner-ticketing/internal/pkg/metrics"
)

type RouterDeps struct {
	Auth           *Authenticator
	Purchases      Purchaser
	Redemptions    Redeemer
	Transfers      Transferrer
	Admin          CatalogAdmin
	DB             Pinger
	AllowedOrigins []string
}

// NewRouter wires every route. Purchases and transfers need any
// authenticated user; redemption needs a scanning role; the catalog
// surface is siteAdmin only.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogger)
	r.Use(metrics.Middleware)
	r.Use(CORS(deps.AllowedOrigins))

	r.Get("/health", HealthHandler(deps.DB))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Middleware)

		r.Post("/purchases/intent", HandleCreateIntent(deps.Purchases))
		r.Post("/purchases/confirm", HandleConfirmPurchase(deps.Purchases))
		r.Post("/tickets/{id}/transfer", HandleTransfer(deps.Transfers))

		r.With(RequireRole(domain.RoleScanner, domain.RoleVenueAdmin, domain.RoleSiteAdmin)).
			Group(func(r chi.Router) {
				r.Post("/redeem", HandleRedeem(deps.Redemptions))
				r.Post("/tickets/{id}/redeem", HandleRedeemByID(deps.Redemptions))
			})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireRole(domain.RoleSiteAdmin))
			r.Post("/events", HandleAdminCreateEvent(deps.Admin))
			r.Get("/events", HandleAdminListEvents(deps.Admin))
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFoundRoute, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	return r
}
