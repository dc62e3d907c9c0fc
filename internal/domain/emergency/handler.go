package emergency

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta el portal de emergencia. Estas rutas son públicas:
// el responder no tiene credenciales, solo el link y su attestation.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/emergency/{emergencyID}", func(er chi.Router) {
		er.Get("/", startSessionHandler(svc))
		er.Post("/attest", attestHandler(svc))
	})
}

type startSessionResponse struct {
	SessionID string `json:"session_id"`
	Patient   struct {
		Name        string `json:"name"`
		DateOfBirth string `json:"date_of_birth"`
	} `json:"patient"`
}

// startSessionHandler resuelve el link y devuelve solo la confirmación del
// paciente (nombre + fecha de nacimiento), nunca datos médicos.
func startSessionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conf, err := svc.Start(r.Context(), chi.URLParam(r, "emergencyID"))
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "invalid or expired emergency link", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		var resp startSessionResponse
		resp.SessionID = conf.SessionID
		resp.Patient.Name = conf.PatientName
		resp.Patient.DateOfBirth = conf.DateOfBirth
		writeJSON(w, http.StatusOK, resp)
	}
}

type attestRequest struct {
	SessionID    string `json:"session_id"`
	Name         string `json:"name"`
	BadgeID      string `json:"badge_id"`
	Organization string `json:"organization"`
	Attested     bool   `json:"attested"`
}

type fieldErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field"`
}

func attestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req attestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		pack, err := svc.Attest(r.Context(), req.SessionID, AttestInput{
			Name:         req.Name,
			BadgeID:      req.BadgeID,
			Organization: req.Organization,
			Attested:     req.Attested,
		})
		if err != nil {
			var verr *ValidationError
			switch {
			case errors.As(err, &verr):
				writeJSON(w, http.StatusBadRequest, fieldErrorResponse{
					Error: verr.Error(),
					Field: verr.Field,
				})
			case errors.Is(err, ErrNotFound):
				http.Error(w, "invalid or expired emergency link", http.StatusNotFound)
			case errors.Is(err, ErrBadState):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, pack)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
