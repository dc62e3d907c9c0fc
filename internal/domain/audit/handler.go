package audit

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"biovault/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/audit", listAuditHandler(svc))
}

type entryResponse struct {
	ID        string    `json:"id"`
	EventType EventType `json:"event_type"`
	Actor     string    `json:"actor"`
	Resource  string    `json:"resource"`
	Timestamp time.Time `json:"timestamp"`
	Location  string    `json:"location"`
}

// listAuditHandler lista el log completo, o filtrado con ?actor=<provider>.
func listAuditHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var (
			items []Entry
			err   error
		)
		if actor := strings.TrimSpace(r.URL.Query().Get("actor")); actor != "" {
			items, err = svc.ListByActor(r.Context(), actor)
		} else {
			items, err = svc.List(r.Context())
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]entryResponse, 0, len(items))
		for _, e := range items {
			out = append(out, entryResponse{
				ID:        e.ID,
				EventType: e.EventType,
				Actor:     e.Actor,
				Resource:  e.Resource,
				Timestamp: e.Timestamp,
				Location:  e.Location,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
