package users

import (
	"encoding/json"
	"net/http"
	"strings"

	"biovault/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/me", func(mr chi.Router) {
		mr.Get("/", getMeHandler(svc))
		mr.Put("/emergency-pack", updateEmergencyPackHandler(svc))
	})
}

type userResponse struct {
	ID                string                `json:"id"`
	EmergencyID       string                `json:"emergency_id"`
	Name              string                `json:"name"`
	Email             string                `json:"email"`
	DateOfBirth       string                `json:"date_of_birth"`
	Tier              string                `json:"tier"`
	BloodType         string                `json:"blood_type"`
	Allergies         []string              `json:"allergies"`
	ChronicConditions []string              `json:"chronic_conditions"`
	Medications       []medicationDTO       `json:"medications"`
	EmergencyContacts []emergencyContactDTO `json:"emergency_contacts"`
	EmergencyPack     emergencyPackDTO      `json:"emergency_pack"`
}

type medicationDTO struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
}

type emergencyContactDTO struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

type emergencyPackDTO struct {
	BloodType         bool `json:"blood_type"`
	Allergies         bool `json:"allergies"`
	Medications       bool `json:"medications"`
	Conditions        bool `json:"conditions"`
	EmergencyContacts bool `json:"emergency_contacts"`
}

// getMeHandler devuelve el perfil del owner autenticado.
func getMeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		u, err := svc.GetByID(r.Context(), claims.UserID)
		if err != nil {
			switch err {
			case ErrNotFound:
				http.Error(w, "not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func updateEmergencyPackHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req emergencyPackDTO
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := svc.UpdateEmergencyPack(r.Context(), claims.UserID, EmergencyPack{
			BloodType:         req.BloodType,
			Allergies:         req.Allergies,
			Medications:       req.Medications,
			Conditions:        req.Conditions,
			EmergencyContacts: req.EmergencyContacts,
		})
		if err != nil {
			switch err {
			case ErrNotFound:
				http.Error(w, "not found", http.StatusNotFound)
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func toUserResponse(u User) userResponse {
	meds := make([]medicationDTO, 0, len(u.Medications))
	for _, m := range u.Medications {
		meds = append(meds, medicationDTO{Name: m.Name, Dosage: m.Dosage, Frequency: m.Frequency})
	}
	contacts := make([]emergencyContactDTO, 0, len(u.EmergencyContacts))
	for _, c := range u.EmergencyContacts {
		contacts = append(contacts, emergencyContactDTO{Name: c.Name, Relationship: c.Relationship, Phone: c.Phone})
	}
	return userResponse{
		ID:                u.ID,
		EmergencyID:       u.EmergencyID,
		Name:              u.Name,
		Email:             u.Email,
		DateOfBirth:       u.DateOfBirth,
		Tier:              u.Tier,
		BloodType:         u.BloodType,
		Allergies:         u.Allergies,
		ChronicConditions: u.ChronicConditions,
		Medications:       meds,
		EmergencyContacts: contacts,
		EmergencyPack: emergencyPackDTO{
			BloodType:         u.EmergencyPack.BloodType,
			Allergies:         u.EmergencyPack.Allergies,
			Medications:       u.EmergencyPack.Medications,
			Conditions:        u.EmergencyPack.Conditions,
			EmergencyContacts: u.EmergencyPack.EmergencyContacts,
		},
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
