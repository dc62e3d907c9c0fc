package capabilities

import "context"

// CapabilityCheck identifica un feature a consultar para un usuario.
type CapabilityCheck struct {
	UserID  string
	Feature string
}

// Features conocidos por el servicio.
const (
	FeatureAssistantChat = "assistant:chat"
)

type CapabilitiesResolver interface {
	HasFeature(ctx context.Context, in CapabilityCheck) (bool, error)
}
