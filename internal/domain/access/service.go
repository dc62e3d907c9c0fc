package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"biovault/internal/domain/audit"
	"biovault/internal/domain/notifications"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

const (
	// Ventana por defecto de un grant aprobado.
	DefaultGrantWindow = 48 * time.Hour

	// Extensión por defecto cuando el owner no especifica delta.
	DefaultExtension = 24 * time.Hour

	// Umbral para el aviso de vencimiento próximo.
	ExpiryWarnWindow = 48 * time.Hour
)

// Service es la única autoridad sobre la cola de pedidos y el registro de
// grants activos. Cada mutación corre bajo s.mu junto con sus side effects
// de audit/notificación: un observador nunca ve el cambio de estado sin su
// entrada de auditoría correspondiente.
type Service struct {
	mu sync.Mutex

	requests RequestRepository
	grants   GrantRepository

	audit  *audit.Service
	notifs *notifications.Service
	toasts Toaster

	now func() time.Time

	// grants ya avisados por vencimiento próximo (se limpia al extender)
	warned map[string]struct{}

	// dedupe de eventos de emergencia redelivered (actor + timestamp)
	seenEmergency map[string]struct{}
}

func NewService(requests RequestRepository, grants GrantRepository, auditSvc *audit.Service, notifSvc *notifications.Service, toasts Toaster) *Service {
	if toasts == nil {
		toasts = NopToaster{}
	}
	return &Service{
		requests:      requests,
		grants:        grants,
		audit:         auditSvc,
		notifs:        notifSvc,
		toasts:        toasts,
		now:           time.Now,
		warned:        map[string]struct{}{},
		seenEmergency: map[string]struct{}{},
	}
}

type SubmitRequestInput struct {
	Provider          string
	Institution       string
	Reason            string
	RequestedDuration string
	DataCategories    []string
}

// SubmitRequest encola un pedido entrante (simulado) y avisa al owner.
func (s *Service) SubmitRequest(ctx context.Context, in SubmitRequestInput) (Request, error) {
	provider := strings.TrimSpace(in.Provider)
	institution := strings.TrimSpace(in.Institution)
	if provider == "" || institution == "" {
		return Request{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req := Request{
		ID:                uuid.NewString(),
		Provider:          provider,
		Institution:       institution,
		Reason:            strings.TrimSpace(in.Reason),
		RequestedDuration: strings.TrimSpace(in.RequestedDuration),
		DataCategories:    in.DataCategories,
		Timestamp:         s.now(),
		Status:            RequestPending,
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return Request{}, err
	}

	_, err := s.notifs.Push(ctx, notifications.PushInput{
		Type:    notifications.TypeAccessRequest,
		Message: fmt.Sprintf("%s requested access to your records", provider),
		LinkTo:  notifications.LinkAccess,
	})
	if err != nil {
		return Request{}, err
	}

	return req, nil
}

func (s *Service) ListRequests(ctx context.Context) ([]Request, error) {
	return s.requests.List(ctx)
}

func (s *Service) ListGrants(ctx context.Context) ([]Grant, error) {
	return s.grants.List(ctx)
}

func (s *Service) GetGrant(ctx context.Context, grantID string) (Grant, error) {
	grantID = strings.TrimSpace(grantID)
	if grantID == "" {
		return Grant{}, ErrInvalidInput
	}
	g, err := s.grants.GetByID(ctx, grantID)
	if err != nil {
		return Grant{}, ErrNotFound
	}
	return g, nil
}

// Approve consume el pedido y crea el grant con la ventana por defecto.
// Id ausente => ErrNotFound, sin cambio parcial de estado.
func (s *Service) Approve(ctx context.Context, requestID string) (Grant, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return Grant{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return Grant{}, ErrNotFound
	}

	now := s.now()
	g := Grant{
		ID:             uuid.NewString(),
		Provider:       req.Provider,
		Institution:    req.Institution,
		GrantedAt:      now,
		ExpiresAt:      now.Add(DefaultGrantWindow),
		DataCategories: req.DataCategories,
		AccessCount:    0,
	}

	if err := s.grants.Create(ctx, g); err != nil {
		return Grant{}, err
	}
	if err := s.requests.Delete(ctx, requestID); err != nil {
		return Grant{}, err
	}

	_, err = s.audit.Record(ctx, audit.RecordInput{
		EventType: audit.EventAccessApproved,
		Actor:     audit.ActorOwner,
		Resource:  req.Provider,
		Location:  audit.LocationLocal,
	})
	if err != nil {
		return Grant{}, err
	}

	s.toasts.Success(fmt.Sprintf("Access approved for %s.", req.Provider))
	return g, nil
}

// Deny consume el pedido sin crear grant.
func (s *Service) Deny(ctx context.Context, requestID string) (Request, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return Request{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return Request{}, ErrNotFound
	}

	if err := s.requests.Delete(ctx, requestID); err != nil {
		return Request{}, err
	}

	_, err = s.audit.Record(ctx, audit.RecordInput{
		EventType: audit.EventAccessDenied,
		Actor:     audit.ActorOwner,
		Resource:  req.Provider,
		Location:  audit.LocationLocal,
	})
	if err != nil {
		return Request{}, err
	}

	req.Status = RequestDenied
	s.toasts.Info(fmt.Sprintf("Access denied for %s.", req.Provider))
	return req, nil
}

// Revoke elimina el grant. Terminal e irreversible: no hay undo.
func (s *Service) Revoke(ctx context.Context, grantID string) (Grant, error) {
	grantID = strings.TrimSpace(grantID)
	if grantID == "" {
		return Grant{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.grants.GetByID(ctx, grantID)
	if err != nil {
		return Grant{}, ErrNotFound
	}

	if err := s.grants.Delete(ctx, grantID); err != nil {
		return Grant{}, err
	}
	delete(s.warned, grantID)

	_, err = s.audit.Record(ctx, audit.RecordInput{
		EventType: audit.EventAccessRevoked,
		Actor:     audit.ActorOwner,
		Resource:  g.Provider,
		Location:  audit.LocationLocal,
	})
	if err != nil {
		return Grant{}, err
	}

	s.toasts.Success(fmt.Sprintf("Access revoked for %s.", g.Provider))
	return g, nil
}

// Extend corre ExpiresAt hacia adelante exactamente delta. delta <= 0 es
// inválido: la ventana nunca se acorta.
func (s *Service) Extend(ctx context.Context, grantID string, delta time.Duration) (Grant, error) {
	grantID = strings.TrimSpace(grantID)
	if grantID == "" || delta <= 0 {
		return Grant{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.grants.GetByID(ctx, grantID)
	if err != nil {
		return Grant{}, ErrNotFound
	}

	g.ExpiresAt = g.ExpiresAt.Add(delta)
	if err := s.grants.Update(ctx, g); err != nil {
		return Grant{}, err
	}

	// si la extensión lo saca de la ventana de aviso, habilitar un aviso nuevo
	if g.ExpiresAt.Sub(s.now()) > ExpiryWarnWindow {
		delete(s.warned, grantID)
	}

	_, err = s.audit.Record(ctx, audit.RecordInput{
		EventType: audit.EventAccessExtended,
		Actor:     audit.ActorOwner,
		Resource:  g.Provider,
		Location:  audit.LocationLocal,
	})
	if err != nil {
		return Grant{}, err
	}

	s.toasts.Success(fmt.Sprintf("Access extended for %s.", g.Provider))
	return g, nil
}

type ProviderAccessKind string

const (
	ProviderAccessView   ProviderAccessKind = "view"
	ProviderAccessUpload ProviderAccessKind = "upload"
)

// RecordProviderAccess registra una acción del provider bajo un grant activo
// (view o upload de un documento), incrementa el contador de accesos y, si
// es upload, notifica al owner.
func (s *Service) RecordProviderAccess(ctx context.Context, grantID, resource string, kind ProviderAccessKind) (Grant, error) {
	grantID = strings.TrimSpace(grantID)
	resource = strings.TrimSpace(resource)
	if grantID == "" || resource == "" {
		return Grant{}, ErrInvalidInput
	}

	var eventType audit.EventType
	switch kind {
	case ProviderAccessView:
		eventType = audit.EventDocumentViewed
	case ProviderAccessUpload:
		eventType = audit.EventDocumentUploaded
	default:
		return Grant{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.grants.GetByID(ctx, grantID)
	if err != nil {
		return Grant{}, ErrNotFound
	}

	g.AccessCount++
	if err := s.grants.Update(ctx, g); err != nil {
		return Grant{}, err
	}

	_, err = s.audit.Record(ctx, audit.RecordInput{
		EventType: eventType,
		Actor:     g.Provider,
		Resource:  resource,
		Location:  g.Institution,
	})
	if err != nil {
		return Grant{}, err
	}

	if kind == ProviderAccessUpload {
		_, err = s.notifs.Push(ctx, notifications.PushInput{
			Type:    notifications.TypeDocumentUploaded,
			Message: fmt.Sprintf("%s uploaded a new document: %s", g.Provider, resource),
			LinkTo:  notifications.LinkHealthRecords,
		})
		if err != nil {
			return Grant{}, err
		}
	}

	return g, nil
}

// TimeLeft formatea el tiempo restante del grant contra el reloj del engine.
func (s *Service) TimeLeft(g Grant) string {
	return FormatTimeLeft(g.ExpiresAt, s.now())
}

// SweepExpiring deriva avisos ACCESS_EXPIRING del estado real de los grants
// (nada hardcodeado): a lo sumo un aviso por grant mientras siga dentro de
// la ventana. Devuelve cuántos avisos emitió.
func (s *Service) SweepExpiring(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.grants.List(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	emitted := 0

	for _, g := range items {
		remaining := g.ExpiresAt.Sub(now)
		if remaining <= 0 || remaining > ExpiryWarnWindow {
			continue
		}
		if _, ok := s.warned[g.ID]; ok {
			continue
		}

		left := FormatTimeLeft(g.ExpiresAt, now)
		msg := fmt.Sprintf("Access for %s will expire in %s", g.Provider, strings.TrimSuffix(left, " left"))
		if left == "Expiring soon" {
			msg = fmt.Sprintf("Access for %s is expiring soon", g.Provider)
		}

		_, err := s.notifs.Push(ctx, notifications.PushInput{
			Type:    notifications.TypeAccessExpiring,
			Message: msg,
			LinkTo:  notifications.LinkAccess,
		})
		if err != nil {
			return emitted, err
		}

		s.warned[g.ID] = struct{}{}
		emitted++
	}

	return emitted, nil
}

// EmergencyEvent es lo que publica el bridge cuando un responder llega a
// Granted. Llega por canal, así que la entrega puede repetirse: el dedupe
// por (actor, timestamp) hace la recepción idempotente.
type EmergencyEvent struct {
	Actor     string
	Resource  string
	Location  string
	Timestamp time.Time
}

// EmergencyViewed es el event sink del bridge: exactamente una entrada de
// audit + una notificación sin leer + un toast por evento.
func (s *Service) EmergencyViewed(ctx context.Context, ev EmergencyEvent) error {
	if strings.TrimSpace(ev.Actor) == "" || ev.Timestamp.IsZero() {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := ev.Actor + "|" + ev.Timestamp.UTC().Format(time.RFC3339Nano)
	if _, ok := s.seenEmergency[key]; ok {
		return nil
	}

	resource := strings.TrimSpace(ev.Resource)
	if resource == "" {
		resource = "Emergency Data Pack"
	}

	_, err := s.audit.Record(ctx, audit.RecordInput{
		EventType: audit.EventEmergencyAccessViewed,
		Actor:     ev.Actor,
		Resource:  resource,
		Location:  ev.Location,
		Timestamp: ev.Timestamp,
	})
	if err != nil {
		return err
	}

	_, err = s.notifs.Push(ctx, notifications.PushInput{
		Type:    notifications.TypeEmergencyAccessViewed,
		Message: fmt.Sprintf("%s viewed your Emergency Data Pack", ev.Actor),
		LinkTo:  notifications.LinkAudit,
	})
	if err != nil {
		return err
	}

	s.seenEmergency[key] = struct{}{}
	s.toasts.Error(fmt.Sprintf("Emergency access: %s viewed your Emergency Data Pack.", ev.Actor))
	return nil
}
