package notifications

type Type string

const (
	TypeAccessRequest         Type = "ACCESS_REQUEST"
	TypeAccessExpiring        Type = "ACCESS_EXPIRING"
	TypeDocumentUploaded      Type = "DOCUMENT_UPLOADED"
	TypeEmergencyAccessViewed Type = "EMERGENCY_ACCESS_VIEWED"
	TypeGeneral               Type = "GENERAL"
)

// Vistas destino para linkTo (las mismas keys que usa el cliente).
const (
	LinkAccess        = "access"
	LinkAudit         = "audit"
	LinkHealthRecords = "healthRecords"
	LinkDashboard     = "dashboard"
)
