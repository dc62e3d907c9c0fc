package tierplan

import (
	"context"
	"errors"
	"os"
	"strings"

	"biovault/internal/domain/users"
	"biovault/internal/ports/capabilities"
)

var ErrUnknownUser = errors.New("tierplan: unknown user")

// tierFeatures mapea el tier del owner a sus features. La tabla es local:
// no hay servicio de billing upstream en el demo.
var tierFeatures = map[string]map[string]bool{
	"Basic": {},
	"Plus": {
		capabilities.FeatureAssistantChat: true,
	},
}

// Resolver implementa capabilities.CapabilitiesResolver a partir del tier
// del perfil. Si ALLOW_ALL_CAPABILITIES=true (env), todo devuelve true
// (modo dev / fallback).
type Resolver struct {
	users    *users.Service
	allowAll bool
}

func NewResolver(usersSvc *users.Service) *Resolver {
	allowAll := strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_ALL_CAPABILITIES")), "true")
	return &Resolver{
		users:    usersSvc,
		allowAll: allowAll,
	}
}

func (r *Resolver) HasFeature(ctx context.Context, in capabilities.CapabilityCheck) (bool, error) {
	feature := strings.TrimSpace(in.Feature)
	if feature == "" {
		return false, errors.New("tierplan: feature required")
	}

	if r.allowAll {
		return true, nil
	}
	if r == nil || r.users == nil {
		// Preferimos fallar explícito en vez de permitir sin control.
		return false, ErrUnknownUser
	}

	u, err := r.users.GetByID(ctx, in.UserID)
	if err != nil {
		return false, ErrUnknownUser
	}

	return tierFeatures[u.Tier][feature], nil
}
