package users

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrInvalidInput
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, ErrNotFound
	}
	return u, nil
}

// GetByEmergencyID resuelve el id público del link de emergencia.
// Un id desconocido es ErrNotFound; el portal lo muestra como
// "invalid or expired emergency link" sin renderizar ningún dato.
func (s *Service) GetByEmergencyID(ctx context.Context, emergencyID string) (User, error) {
	emergencyID = strings.TrimSpace(emergencyID)
	if emergencyID == "" {
		return User{}, ErrInvalidInput
	}
	u, err := s.repo.GetByEmergencyID(ctx, emergencyID)
	if err != nil {
		return User{}, ErrNotFound
	}
	return u, nil
}

// UpdateEmergencyPack reemplaza la configuración completa del pack.
func (s *Service) UpdateEmergencyPack(ctx context.Context, userID string, pack EmergencyPack) (User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return User{}, ErrInvalidInput
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, ErrNotFound
	}

	u.EmergencyPack = pack
	u.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}
