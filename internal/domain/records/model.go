package records

import "time"

// HealthRecord es metadata de un documento clínico. El contenido real
// vive fuera de este servicio; el hash IPFS es decorativo en el demo.
type HealthRecord struct {
	ID       string
	Name     string
	Type     string
	Category string

	UploadedAt time.Time
	Size       string
	IPFSHash   string
	Encrypted  bool

	// UploadedBy queda vacío cuando sube el owner; con nombre de provider
	// cuando el documento entra por un grant activo.
	UploadedBy string
}
