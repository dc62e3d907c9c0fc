package notifications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
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

type PushInput struct {
	Type    Type
	Message string
	LinkTo  string
}

// Push crea una notificación sin leer al frente del feed.
func (s *Service) Push(ctx context.Context, in PushInput) (Notification, error) {
	if in.Type == "" || strings.TrimSpace(in.Message) == "" {
		return Notification{}, ErrInvalidInput
	}

	n := Notification{
		ID:        uuid.NewString(),
		Type:      in.Type,
		Message:   strings.TrimSpace(in.Message),
		Timestamp: s.now(),
		IsRead:    false,
		LinkTo:    strings.TrimSpace(in.LinkTo),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

func (s *Service) List(ctx context.Context) ([]Notification, error) {
	return s.repo.List(ctx)
}

// MarkRead es idempotente: id inexistente o ya leído no es error.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context) error {
	return s.repo.MarkAllRead(ctx)
}

// UnreadCount alimenta el badge de la campana.
func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	return s.repo.UnreadCount(ctx)
}
