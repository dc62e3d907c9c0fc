package records

import (
	"context"
	"errors"
	"strings"
	"time"

	"biovault/internal/domain/audit"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo  Repository
	audit *audit.Service
	now   func() time.Time
}

func NewService(repo Repository, auditSvc *audit.Service) *Service {
	return &Service{
		repo:  repo,
		audit: auditSvc,
		now:   time.Now,
	}
}

type UploadInput struct {
	Name     string
	Type     string
	Category string
	Size     string

	// UploadedBy vacío => owner. Con valor => provider (vía grant).
	UploadedBy string
	Location   string // institución del provider; vacío => "Your Device"
}

// Register crea la metadata de un documento sin tocar el audit log.
// Lo usa el flujo de provider, donde el engine de grants es quien deja la
// entrada de auditoría junto al resto de sus side effects.
func (s *Service) Register(ctx context.Context, in UploadInput) (HealthRecord, error) {
	if strings.TrimSpace(in.Name) == "" {
		return HealthRecord{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Category) == "" {
		return HealthRecord{}, ErrInvalidInput
	}

	typ := strings.TrimSpace(in.Type)
	if typ == "" {
		typ = strings.TrimSpace(in.Category)
	}

	rec := HealthRecord{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(in.Name),
		Type:       typ,
		Category:   strings.TrimSpace(in.Category),
		UploadedAt: s.now(),
		Size:       strings.TrimSpace(in.Size),
		IPFSHash:   fakeIPFSHash(),
		Encrypted:  true,
		UploadedBy: strings.TrimSpace(in.UploadedBy),
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return HealthRecord{}, err
	}
	return rec, nil
}

// Upload es la subida del propio owner: registra la metadata y deja el
// evento DOCUMENT_UPLOADED en el audit log.
func (s *Service) Upload(ctx context.Context, in UploadInput) (HealthRecord, error) {
	rec, err := s.Register(ctx, in)
	if err != nil {
		return HealthRecord{}, err
	}

	actor := rec.UploadedBy
	location := strings.TrimSpace(in.Location)
	if actor == "" {
		actor = audit.ActorOwner
	}
	if location == "" {
		location = audit.LocationLocal
	}
	_, err = s.audit.Record(ctx, audit.RecordInput{
		EventType: audit.EventDocumentUploaded,
		Actor:     actor,
		Resource:  rec.Name,
		Location:  location,
	})
	if err != nil {
		return HealthRecord{}, err
	}

	return rec, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (HealthRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return HealthRecord{}, ErrInvalidInput
	}
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return HealthRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context) ([]HealthRecord, error) {
	return s.repo.List(ctx)
}

// RecordView deja constancia de que el owner abrió un documento.
// Las vistas de providers pasan por el engine de grants, no por acá.
func (s *Service) RecordView(ctx context.Context, id string) (HealthRecord, error) {
	rec, err := s.GetByID(ctx, id)
	if err != nil {
		return HealthRecord{}, err
	}

	_, err = s.audit.Record(ctx, audit.RecordInput{
		EventType: audit.EventDocumentViewed,
		Actor:     audit.ActorOwner,
		Resource:  rec.Name,
		Location:  audit.LocationLocal,
	})
	if err != nil {
		return HealthRecord{}, err
	}
	return rec, nil
}

// fakeIPFSHash genera un hash decorativo estilo CID. No hay IPFS real.
func fakeIPFSHash() string {
	return "Qm" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
