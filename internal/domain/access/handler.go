package access

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"biovault/internal/domain/audit"
	"biovault/internal/domain/records"
	"biovault/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, auditSvc *audit.Service, recordsSvc *records.Service) {
	r.Route("/requests", func(rr chi.Router) {
		rr.Get("/", listRequestsHandler(svc))
		rr.Post("/", submitRequestHandler(svc))
		rr.Post("/{requestID}/approve", approveRequestHandler(svc))
		rr.Post("/{requestID}/deny", denyRequestHandler(svc))
	})

	r.Route("/grants", func(gr chi.Router) {
		gr.Get("/", listGrantsHandler(svc))
		gr.Post("/{grantID}/revoke", revokeGrantHandler(svc))
		gr.Post("/{grantID}/extend", extendGrantHandler(svc))
		gr.Get("/{grantID}/activity", grantActivityHandler(svc, auditSvc))
		gr.Post("/{grantID}/records", providerUploadHandler(svc, recordsSvc))
		gr.Post("/{grantID}/views", providerViewHandler(svc))
	})
}

type submitRequestRequest struct {
	Provider          string   `json:"provider"`
	Institution       string   `json:"institution"`
	Reason            string   `json:"reason"`
	RequestedDuration string   `json:"requested_duration"`
	DataCategories    []string `json:"data_categories"`
}

type requestResponse struct {
	ID                string        `json:"id"`
	Provider          string        `json:"provider"`
	Institution       string        `json:"institution"`
	Reason            string        `json:"reason"`
	RequestedDuration string        `json:"requested_duration"`
	DataCategories    []string      `json:"data_categories"`
	Timestamp         time.Time     `json:"timestamp"`
	Status            RequestStatus `json:"status"`
}

type grantResponse struct {
	ID             string    `json:"id"`
	Provider       string    `json:"provider"`
	Institution    string    `json:"institution"`
	GrantedAt      time.Time `json:"granted_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	DataCategories []string  `json:"data_categories"`
	AccessCount    int       `json:"access_count"`
	TimeLeft       string    `json:"time_left"`
}

// mutationResponse lleva el texto de confirmación (el "toast" del cliente)
// junto al recurso afectado.
type mutationResponse struct {
	Message string         `json:"message"`
	Grant   *grantResponse `json:"grant,omitempty"`
}

func listRequestsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireOwner(w, r) {
			return
		}

		items, err := svc.ListRequests(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]requestResponse, 0, len(items))
		for _, req := range items {
			out = append(out, toRequestResponse(req))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// submitRequestHandler simula el pedido entrante de un provider.
func submitRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireOwner(w, r) {
			return
		}

		var req submitRequestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		created, err := svc.SubmitRequest(r.Context(), SubmitRequestInput{
			Provider:          req.Provider,
			Institution:       req.Institution,
			Reason:            req.Reason,
			RequestedDuration: req.RequestedDuration,
			DataCategories:    req.DataCategories,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toRequestResponse(created))
	}
}

func approveRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireOwner(w, r) {
			return
		}

		g, err := svc.Approve(r.Context(), chi.URLParam(r, "requestID"))
		if err != nil {
			writeEngineError(w, err)
			return
		}

		resp := toGrantResponse(g, svc)
		writeJSON(w, http.StatusOK, mutationResponse{
			Message: fmt.Sprintf("Access approved for %s.", g.Provider),
			Grant:   &resp,
		})
	}
}

func denyRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireOwner(w, r) {
			return
		}

		req, err := svc.Deny(r.Context(), chi.URLParam(r, "requestID"))
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, mutationResponse{
			Message: fmt.Sprintf("Access denied for %s.", req.Provider),
		})
	}
}

func listGrantsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireOwner(w, r) {
			return
		}

		items, err := svc.ListGrants(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]grantResponse, 0, len(items))
		for _, g := range items {
			out = append(out, toGrantResponse(g, svc))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func revokeGrantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireOwner(w, r) {
			return
		}

		g, err := svc.Revoke(r.Context(), chi.URLParam(r, "grantID"))
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, mutationResponse{
			Message: fmt.Sprintf("Access revoked for %s.", g.Provider),
		})
	}
}

type extendGrantRequest struct {
	// Hours opcional; 0 => extensión por defecto (24h).
	Hours int `json:"hours"`
}

func extendGrantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireOwner(w, r) {
			return
		}

		var req extendGrantRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		delta := DefaultExtension
		if req.Hours != 0 {
			delta = time.Duration(req.Hours) * time.Hour
		}

		g, err := svc.Extend(r.Context(), chi.URLParam(r, "grantID"), delta)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		resp := toGrantResponse(g, svc)
		writeJSON(w, http.StatusOK, mutationResponse{
			Message: fmt.Sprintf("Access extended for %s.", g.Provider),
			Grant:   &resp,
		})
	}
}

// grantActivityHandler: drill-down del audit log a la actividad de un grant.
func grantActivityHandler(svc *Service, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireOwner(w, r) {
			return
		}

		g, err := svc.GetGrant(r.Context(), chi.URLParam(r, "grantID"))
		if err != nil {
			writeEngineError(w, err)
			return
		}

		items, err := auditSvc.ListByActor(r.Context(), g.Provider)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

type providerUploadRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Size     string `json:"size"`
}

// providerUploadHandler: un provider con grant activo sube un documento al
// historial del owner. El registro del documento y el evento de auditoría
// van juntos; el owner recibe la notificación DOCUMENT_UPLOADED.
func providerUploadHandler(svc *Service, recordsSvc *records.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireOwner(w, r) {
			return
		}

		g, err := svc.GetGrant(r.Context(), chi.URLParam(r, "grantID"))
		if err != nil {
			writeEngineError(w, err)
			return
		}

		var req providerUploadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rec, err := recordsSvc.Register(r.Context(), records.UploadInput{
			Name:       req.Name,
			Category:   req.Category,
			Size:       req.Size,
			UploadedBy: g.Provider,
			Location:   g.Institution,
		})
		if err != nil {
			switch err {
			case records.ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		if _, err := svc.RecordProviderAccess(r.Context(), g.ID, rec.Name, ProviderAccessUpload); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, mutationResponse{
			Message: "Document uploaded to patient record.",
		})
	}
}

type providerViewRequest struct {
	Resource string `json:"resource"`
}

func providerViewHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireOwner(w, r) {
			return
		}

		var req providerViewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		g, err := svc.RecordProviderAccess(r.Context(), chi.URLParam(r, "grantID"), req.Resource, ProviderAccessView)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		resp := toGrantResponse(g, svc)
		writeJSON(w, http.StatusOK, resp)
	}
}

func toRequestResponse(req Request) requestResponse {
	return requestResponse{
		ID:                req.ID,
		Provider:          req.Provider,
		Institution:       req.Institution,
		Reason:            req.Reason,
		RequestedDuration: req.RequestedDuration,
		DataCategories:    req.DataCategories,
		Timestamp:         req.Timestamp,
		Status:            req.Status,
	}
}

func toGrantResponse(g Grant, svc *Service) grantResponse {
	return grantResponse{
		ID:             g.ID,
		Provider:       g.Provider,
		Institution:    g.Institution,
		GrantedAt:      g.GrantedAt,
		ExpiresAt:      g.ExpiresAt,
		DataCategories: g.DataCategories,
		AccessCount:    g.AccessCount,
		TimeLeft:       svc.TimeLeft(g),
	}
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch err {
	case ErrInvalidInput:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case ErrNotFound:
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func requireOwner(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
