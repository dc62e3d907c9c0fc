package audit

type EventType string

const (
	EventDocumentViewed        EventType = "DOCUMENT_VIEWED"
	EventDocumentUploaded      EventType = "DOCUMENT_UPLOADED"
	EventAccessApproved        EventType = "ACCESS_APPROVED"
	EventAccessDenied          EventType = "ACCESS_DENIED"
	EventAccessRevoked         EventType = "ACCESS_REVOKED"
	EventAccessExtended        EventType = "ACCESS_EXTENDED"
	EventEmergencyAccessViewed EventType = "EMERGENCY_ACCESS_VIEWED"
)

// Actor y location del owner; los providers usan su propio nombre e institución.
const (
	ActorOwner    = "You"
	LocationLocal = "Your Device"
)
