package audit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
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

type RecordInput struct {
	EventType EventType
	Actor     string
	Resource  string
	Location  string

	// Timestamp opcional: si viene en cero se usa el reloj del servicio.
	// El bridge de emergencia manda el suyo para que el dedupe sea estable.
	Timestamp time.Time
}

// Record agrega una entrada al log. Siempre append, nunca update.
func (s *Service) Record(ctx context.Context, in RecordInput) (Entry, error) {
	if in.EventType == "" {
		return Entry{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Actor) == "" || strings.TrimSpace(in.Resource) == "" {
		return Entry{}, ErrInvalidInput
	}

	ts := in.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	e := Entry{
		ID:        uuid.NewString(),
		EventType: in.EventType,
		Actor:     strings.TrimSpace(in.Actor),
		Resource:  strings.TrimSpace(in.Resource),
		Timestamp: ts,
		Location:  strings.TrimSpace(in.Location),
	}

	if err := s.repo.Append(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *Service) List(ctx context.Context) ([]Entry, error) {
	return s.repo.List(ctx)
}

// ListByActor filtra el log para el drill-down "view activity" de un provider.
func (s *Service) ListByActor(ctx context.Context, actor string) ([]Entry, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByActor(ctx, actor)
}
