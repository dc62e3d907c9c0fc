package audit

import "time"

// Entry es un registro inmutable de un evento de seguridad.
// Nunca se edita ni se borra; el log solo crece.
type Entry struct {
	ID        string
	EventType EventType
	Actor     string
	Resource  string
	Timestamp time.Time
	Location  string
}
