package emergency

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"biovault/internal/domain/users"
	"biovault/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("not found")
	ErrBadState = errors.New("invalid state")
)

// ValidationError señala qué campo de la attestation falta o es inválido.
// El portal lo muestra a nivel de campo, no como error genérico.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "missing or invalid field: " + e.Field
}

// Service implementa el bridge de acceso de emergencia. Las sesiones viven
// en memoria: son one-shot y mueren con el proceso, igual que en la
// referencia (no hay nada que persistir).
type Service struct {
	mu       sync.Mutex
	sessions map[string]*Session

	users  *users.Service
	events chan<- ViewEvent
	log    logger.Logger

	now func() time.Time

	// verifyDelay es cosmético (la referencia muestra ~1.5s de "Verifying...").
	// Cero por defecto; la corrección nunca depende de él.
	verifyDelay time.Duration
}

func NewService(usersSvc *users.Service, events chan<- ViewEvent, log logger.Logger) *Service {
	return &Service{
		sessions: map[string]*Session{},
		users:    usersSvc,
		events:   events,
		log:      log,
		now:      time.Now,
	}
}

// PatientConfirmation es lo único visible antes de la attestation.
type PatientConfirmation struct {
	SessionID   string
	PatientName string
	DateOfBirth string
}

// Start resuelve el link /emergency/{emergencyID} y abre una sesión de
// responder. Id desconocido => ErrNotFound, sin render de ningún dato.
func (s *Service) Start(ctx context.Context, emergencyID string) (PatientConfirmation, error) {
	u, err := s.users.GetByEmergencyID(ctx, emergencyID)
	if err != nil {
		return PatientConfirmation{}, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{
		ID:          uuid.NewString(),
		EmergencyID: u.EmergencyID,
		OwnerUserID: u.ID,
		State:       StateAwaitingAttestation,
		CreatedAt:   s.now(),
	}
	s.sessions[sess.ID] = sess

	return PatientConfirmation{
		SessionID:   sess.ID,
		PatientName: u.Name,
		DateOfBirth: u.DateOfBirth,
	}, nil
}

type AttestInput struct {
	Name         string
	BadgeID      string
	Organization string
	Attested     bool
}

// Attest valida la attestation del responder y, si pasa, transiciona
// Verifying -> Granted y entrega el data pack filtrado por la config del
// owner. Publica exactamente un ViewEvent hacia la sesión del owner.
func (s *Service) Attest(ctx context.Context, sessionID string, in AttestInput) (DataPack, error) {
	name := strings.TrimSpace(in.Name)
	badge := strings.TrimSpace(in.BadgeID)
	org := strings.TrimSpace(in.Organization)

	if name == "" {
		return DataPack{}, &ValidationError{Field: "name"}
	}
	if badge == "" {
		return DataPack{}, &ValidationError{Field: "badge_id"}
	}
	if org == "" {
		return DataPack{}, &ValidationError{Field: "organization"}
	}
	if !in.Attested {
		return DataPack{}, &ValidationError{Field: "attested"}
	}

	s.mu.Lock()
	sess, ok := s.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		s.mu.Unlock()
		return DataPack{}, ErrNotFound
	}
	if sess.State != StateAwaitingAttestation {
		s.mu.Unlock()
		return DataPack{}, ErrBadState
	}
	sess.State = StateVerifying
	sess.Responder = Responder{Name: name, BadgeID: badge, Organization: org}
	s.mu.Unlock()

	// "Verificación": no hay chequeo real de identidad. Es un límite de
	// confianza asumido del portal de emergencia, no un bug.
	if s.verifyDelay > 0 {
		time.Sleep(s.verifyDelay)
	}

	u, err := s.users.GetByEmergencyID(ctx, sess.EmergencyID)
	if err != nil {
		return DataPack{}, ErrNotFound
	}

	now := s.now()

	s.mu.Lock()
	sess.State = StateGranted
	sess.GrantedAt = &now
	s.mu.Unlock()

	s.publish(ViewEvent{
		Actor:     name + " (Responder)",
		Resource:  "Emergency Data Pack",
		Location:  org,
		Timestamp: now,
	})

	return buildDataPack(u), nil
}

func (s *Service) GetSession(sessionID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		return Session{}, ErrNotFound
	}
	return *sess, nil
}

// publish entrega el evento best-effort. Canal lleno o ausente se loggea
// localmente: la vista de emergencia no puede quedar sin rastro silencioso.
func (s *Service) publish(ev ViewEvent) {
	if s.events == nil {
		s.logDeliveryFailure(ev, "no event channel configured")
		return
	}
	select {
	case s.events <- ev:
	default:
		s.logDeliveryFailure(ev, "event channel full")
	}
}

func (s *Service) logDeliveryFailure(ev ViewEvent, reason string) {
	if s.log == nil {
		return
	}
	s.log.Error("emergency access event not delivered", map[string]any{
		"reason":   reason,
		"actor":    ev.Actor,
		"location": ev.Location,
	})
}

// buildDataPack arma el pack respetando la config del owner: campo excluido,
// campo que no existe para el responder.
func buildDataPack(u users.User) DataPack {
	pack := DataPack{
		PatientName: u.Name,
		DateOfBirth: u.DateOfBirth,
	}
	if u.EmergencyPack.BloodType {
		pack.BloodType = u.BloodType
	}
	if u.EmergencyPack.Allergies {
		pack.Allergies = u.Allergies
	}
	if u.EmergencyPack.Conditions {
		pack.Conditions = u.ChronicConditions
	}
	if u.EmergencyPack.Medications {
		pack.Medications = u.Medications
	}
	if u.EmergencyPack.EmergencyContacts {
		pack.EmergencyContacts = u.EmergencyContacts
	}
	return pack
}
