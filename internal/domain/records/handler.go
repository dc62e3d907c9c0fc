package records

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"biovault/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/records", func(rr chi.Router) {
		rr.Get("/", listRecordsHandler(svc))
		rr.Post("/", uploadRecordHandler(svc))
		rr.Get("/{recordID}", getRecordHandler(svc))
		rr.Post("/{recordID}/view", viewRecordHandler(svc))
	})
}

type uploadRecordRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Size     string `json:"size"`
}

type recordResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Category   string    `json:"category"`
	UploadedAt time.Time `json:"uploaded_at"`
	Size       string    `json:"size"`
	IPFSHash   string    `json:"ipfs_hash"`
	Encrypted  bool      `json:"encrypted"`
	UploadedBy string    `json:"uploaded_by,omitempty"`
}

func listRecordsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireOwner(w, r) {
			return
		}

		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]recordResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toRecordResponse(rec))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// uploadRecordHandler: subida del owner. Las subidas de providers van por
// POST /grants/{grantID}/records para que pasen por el grant activo.
func uploadRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireOwner(w, r) {
			return
		}

		var req uploadRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rec, err := svc.Upload(r.Context(), UploadInput{
			Name:     req.Name,
			Type:     req.Type,
			Category: req.Category,
			Size:     req.Size,
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

		writeJSON(w, http.StatusCreated, toRecordResponse(rec))
	}
}

func getRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireOwner(w, r) {
			return
		}

		rec, err := svc.GetByID(r.Context(), chi.URLParam(r, "recordID"))
		if err != nil {
			switch err {
			case ErrNotFound:
				http.Error(w, "not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

func viewRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireOwner(w, r) {
			return
		}

		rec, err := svc.RecordView(r.Context(), chi.URLParam(r, "recordID"))
		if err != nil {
			switch err {
			case ErrNotFound:
				http.Error(w, "not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

func toRecordResponse(rec HealthRecord) recordResponse {
	return recordResponse{
		ID:         rec.ID,
		Name:       rec.Name,
		Type:       rec.Type,
		Category:   rec.Category,
		UploadedAt: rec.UploadedAt,
		Size:       rec.Size,
		IPFSHash:   rec.IPFSHash,
		Encrypted:  rec.Encrypted,
		UploadedBy: rec.UploadedBy,
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
