package http

import (
	"context"
	"net/http"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}

// HealthHandler reports liveness plus store reachability.
func HealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		services := map[string]string{"database": "ok"}
		status := http.StatusOK
		overall := "ok"

		if db != nil {
			if err := db.Ping(ctx); err != nil {
				services["database"] = "unreachable"
				overall = "degraded"
				status = http.StatusServiceUnavailable
			}
		}

		writeJSON(w, status, healthResponse{Status: overall, Services: services})
	}
}
