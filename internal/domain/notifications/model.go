package notifications

import "time"

// Notification es una alerta accionable para el owner.
// Solo muta su flag IsRead (false -> true, una sola vez).
type Notification struct {
	ID        string
	Type      Type
	Message   string
	Timestamp time.Time
	IsRead    bool
	LinkTo    string
}
