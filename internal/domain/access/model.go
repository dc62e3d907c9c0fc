package access

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestDenied   RequestStatus = "denied"
)

// Request es un pedido de acceso pendiente de un provider.
// Se consume exactamente una vez: approve o deny lo sacan de la cola.
type Request struct {
	ID          string
	Provider    string
	Institution string
	Reason      string

	// RequestedDuration es el texto que pidió el provider ("48 hours",
	// "7 days"); es display-only, la ventana real la fija el engine.
	RequestedDuration string

	DataCategories []string
	Timestamp      time.Time
	Status         RequestStatus
}

// Grant es el acceso vigente y acotado en el tiempo de un provider.
// ExpiresAt solo puede crecer (extend); nunca se acorta retroactivamente.
// Un grant vencido sigue presente hasta que el owner lo revoca.
type Grant struct {
	ID          string
	Provider    string
	Institution string

	GrantedAt time.Time
	ExpiresAt time.Time

	DataCategories []string
	AccessCount    int
}
