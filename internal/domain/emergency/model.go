package emergency

import (
	"time"

	"biovault/internal/domain/users"
)

type State string

const (
	StateAwaitingAttestation State = "awaiting_attestation"
	StateVerifying           State = "verifying"
	StateGranted             State = "granted"
)

type Responder struct {
	Name         string
	BadgeID      string
	Organization string
}

// Session es el recorrido one-shot de un responder por el portal:
// AwaitingAttestation -> Verifying -> Granted (terminal, sin revoke).
type Session struct {
	ID          string
	EmergencyID string
	OwnerUserID string

	State     State
	Responder Responder

	CreatedAt time.Time
	GrantedAt *time.Time
}

// DataPack es lo único que ve el responder: solo los campos que el owner
// marcó como incluidos en su emergency pack. Lo excluido ni se serializa.
type DataPack struct {
	PatientName string `json:"patient_name"`
	DateOfBirth string `json:"date_of_birth"`

	BloodType         string                   `json:"blood_type,omitempty"`
	Allergies         []string                 `json:"allergies,omitempty"`
	Conditions        []string                 `json:"conditions,omitempty"`
	Medications       []users.Medication       `json:"medications,omitempty"`
	EmergencyContacts []users.EmergencyContact `json:"emergency_contacts,omitempty"`
}

// ViewEvent es lo que el bridge publica hacia la sesión del owner cuando
// un responder llega a Granted. Exactamente un evento por sesión.
type ViewEvent struct {
	Actor     string
	Resource  string
	Location  string
	Timestamp time.Time
}
