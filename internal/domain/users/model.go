package users

import "time"

type Medication struct {
	Name      string
	Dosage    string
	Frequency string
}

type EmergencyContact struct {
	Name         string
	Relationship string
	Phone        string
}

// EmergencyPack define qué campos del perfil se exponen a un responder
// vía el portal de emergencia. Lo que está en false nunca se entrega.
type EmergencyPack struct {
	BloodType         bool
	Allergies         bool
	Medications       bool
	Conditions        bool
	EmergencyContacts bool
}

// User representa al dueño de la bóveda (actor único de la sesión).
type User struct {
	ID          string
	EmergencyID string // identificador público del link /emergency/{id}

	Name        string
	Email       string
	DateOfBirth string
	Tier        string

	BloodType         string
	Allergies         []string
	ChronicConditions []string
	Medications       []Medication
	EmergencyContacts []EmergencyContact

	EmergencyPack EmergencyPack

	CreatedAt time.Time
	UpdatedAt time.Time
}
