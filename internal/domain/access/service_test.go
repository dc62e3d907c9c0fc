package access

import (
	"context"
	"errors"
	"testing"
	"time"

	"biovault/internal/domain/audit"
	"biovault/internal/domain/notifications"
)

// -------------------------
// Test repos (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRequestsRepo struct {
	byID map[string]Request
}

func newTestRequestsRepo() *testRequestsRepo {
	return &testRequestsRepo{byID: map[string]Request{}}
}

func (r *testRequestsRepo) Create(ctx context.Context, req Request) error {
	if req.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[req.ID] = req
	return nil
}

func (r *testRequestsRepo) GetByID(ctx context.Context, id string) (Request, error) {
	req, ok := r.byID[id]
	if !ok {
		return Request{}, errRepoNotFound
	}
	return req, nil
}

func (r *testRequestsRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return errRepoNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRequestsRepo) List(ctx context.Context) ([]Request, error) {
	out := make([]Request, 0, len(r.byID))
	for _, req := range r.byID {
		out = append(out, req)
	}
	return out, nil
}

type testGrantsRepo struct {
	byID map[string]Grant
}

func newTestGrantsRepo() *testGrantsRepo {
	return &testGrantsRepo{byID: map[string]Grant{}}
}

func (r *testGrantsRepo) Create(ctx context.Context, g Grant) error {
	if g.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[g.ID] = g
	return nil
}

func (r *testGrantsRepo) Update(ctx context.Context, g Grant) error {
	if _, ok := r.byID[g.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[g.ID] = g
	return nil
}

func (r *testGrantsRepo) GetByID(ctx context.Context, id string) (Grant, error) {
	g, ok := r.byID[id]
	if !ok {
		return Grant{}, errRepoNotFound
	}
	return g, nil
}

func (r *testGrantsRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return errRepoNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testGrantsRepo) List(ctx context.Context) ([]Grant, error) {
	out := make([]Grant, 0, len(r.byID))
	for _, g := range r.byID {
		out = append(out, g)
	}
	return out, nil
}

type testAuditRepo struct {
	entries []audit.Entry
}

func (r *testAuditRepo) Append(ctx context.Context, e audit.Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

func (r *testAuditRepo) List(ctx context.Context) ([]audit.Entry, error) {
	out := make([]audit.Entry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}

func (r *testAuditRepo) ListByActor(ctx context.Context, actor string) ([]audit.Entry, error) {
	out := make([]audit.Entry, 0)
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Actor == actor {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *testAuditRepo) lastEntry(t *testing.T) audit.Entry {
	t.Helper()
	if len(r.entries) == 0 {
		t.Fatalf("expected at least one audit entry")
	}
	return r.entries[len(r.entries)-1]
}

type testNotifsRepo struct {
	items []notifications.Notification
}

func (r *testNotifsRepo) Create(ctx context.Context, n notifications.Notification) error {
	r.items = append(r.items, n)
	return nil
}

func (r *testNotifsRepo) List(ctx context.Context) ([]notifications.Notification, error) {
	return r.items, nil
}

func (r *testNotifsRepo) MarkRead(ctx context.Context, id string) error {
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].IsRead = true
			return nil
		}
	}
	return notifications.ErrNotFound
}

func (r *testNotifsRepo) MarkAllRead(ctx context.Context) error {
	for i := range r.items {
		r.items[i].IsRead = true
	}
	return nil
}

func (r *testNotifsRepo) UnreadCount(ctx context.Context) (int, error) {
	n := 0
	for i := range r.items {
		if !r.items[i].IsRead {
			n++
		}
	}
	return n, nil
}

// testToaster graba los mensajes por severidad.
type testToaster struct {
	success []string
	info    []string
	errs    []string
}

func (t *testToaster) Success(msg string) { t.success = append(t.success, msg) }
func (t *testToaster) Info(msg string)    { t.info = append(t.info, msg) }
func (t *testToaster) Error(msg string)   { t.errs = append(t.errs, msg) }

type engineFixture struct {
	svc      *Service
	requests *testRequestsRepo
	grants   *testGrantsRepo
	auditLog *testAuditRepo
	notifs   *testNotifsRepo
	toasts   *testToaster
}

func newEngineFixture(now time.Time) *engineFixture {
	f := &engineFixture{
		requests: newTestRequestsRepo(),
		grants:   newTestGrantsRepo(),
		auditLog: &testAuditRepo{},
		notifs:   &testNotifsRepo{},
		toasts:   &testToaster{},
	}
	auditSvc := audit.NewService(f.auditLog)
	notifSvc := notifications.NewService(f.notifs)
	f.svc = NewService(f.requests, f.grants, auditSvc, notifSvc, f.toasts)
	f.svc.now = func() time.Time { return now }
	return f
}

func seedPendingRequest(t *testing.T, f *engineFixture, id, provider string) {
	t.Helper()
	err := f.requests.Create(context.Background(), Request{
		ID:             id,
		Provider:       provider,
		Institution:    "City General Hospital",
		Reason:         "Follow-up",
		DataCategories: []string{"Lab Results"},
		Timestamp:      time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC),
		Status:         RequestPending,
	})
	if err != nil {
		t.Fatalf("seed request: %v", err)
	}
}

// -------------------------
// Tests
// -------------------------

func TestService_Approve_CreatesGrantAndConsumesRequest(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	f := newEngineFixture(now)
	seedPendingRequest(t, f, "req-1", "Dr. Maria Rodriguez")

	g, err := f.svc.Approve(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("Approve error: %v", err)
	}

	if g.GrantedAt != now {
		t.Fatalf("expected GrantedAt=now, got %v", g.GrantedAt)
	}
	if g.ExpiresAt != now.Add(DefaultGrantWindow) {
		t.Fatalf("expected 48h window, got %v", g.ExpiresAt)
	}
	if g.AccessCount != 0 {
		t.Fatalf("expected AccessCount 0, got %d", g.AccessCount)
	}

	// el pedido se consumió
	if _, err := f.requests.GetByID(context.Background(), "req-1"); err == nil {
		t.Fatalf("expected request to be consumed")
	}

	e := f.auditLog.lastEntry(t)
	if e.EventType != audit.EventAccessApproved {
		t.Fatalf("expected ACCESS_APPROVED, got %s", e.EventType)
	}
	if e.Actor != audit.ActorOwner || e.Location != audit.LocationLocal {
		t.Fatalf("expected owner actor/location, got %s / %s", e.Actor, e.Location)
	}
	if e.Resource != "Dr. Maria Rodriguez" {
		t.Fatalf("expected resource = provider, got %s", e.Resource)
	}

	if len(f.toasts.success) != 1 || f.toasts.success[0] != "Access approved for Dr. Maria Rodriguez." {
		t.Fatalf("expected success toast, got %#v", f.toasts.success)
	}
}

func TestService_Approve_UnknownRequest_NotFound(t *testing.T) {
	f := newEngineFixture(time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))

	_, err := f.svc.Approve(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(f.auditLog.entries) != 0 {
		t.Fatalf("expected no audit entries on failed approve")
	}
	if len(f.grants.byID) != 0 {
		t.Fatalf("expected no grants on failed approve")
	}
}

func TestService_Deny_ConsumesRequestWithoutGrant(t *testing.T) {
	f := newEngineFixture(time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))
	seedPendingRequest(t, f, "req-1", "Dr. James Chen")

	req, err := f.svc.Deny(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("Deny error: %v", err)
	}
	if req.Status != RequestDenied {
		t.Fatalf("expected denied status, got %s", req.Status)
	}
	if len(f.grants.byID) != 0 {
		t.Fatalf("deny must not create a grant")
	}

	e := f.auditLog.lastEntry(t)
	if e.EventType != audit.EventAccessDenied {
		t.Fatalf("expected ACCESS_DENIED, got %s", e.EventType)
	}
	if len(f.toasts.info) != 1 {
		t.Fatalf("expected info toast on deny, got %#v", f.toasts)
	}
}

func TestService_Revoke_RemovesGrant(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	f := newEngineFixture(now)
	seedPendingRequest(t, f, "req-1", "Dr. Emily Thompson")

	g, err := f.svc.Approve(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("Approve error: %v", err)
	}

	if _, err := f.svc.Revoke(context.Background(), g.ID); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
	if _, err := f.grants.GetByID(context.Background(), g.ID); err == nil {
		t.Fatalf("expected grant gone after revoke")
	}

	e := f.auditLog.lastEntry(t)
	if e.EventType != audit.EventAccessRevoked {
		t.Fatalf("expected ACCESS_REVOKED, got %s", e.EventType)
	}

	// revocar de nuevo es ErrNotFound, no no-op silencioso
	if _, err := f.svc.Revoke(context.Background(), g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double revoke, got %v", err)
	}
}

func TestService_Extend_MovesExpiryForward(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	f := newEngineFixture(now)
	seedPendingRequest(t, f, "req-1", "Dr. Emily Thompson")

	g, err := f.svc.Approve(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("Approve error: %v", err)
	}

	extended, err := f.svc.Extend(context.Background(), g.ID, DefaultExtension)
	if err != nil {
		t.Fatalf("Extend error: %v", err)
	}
	if extended.ExpiresAt != g.ExpiresAt.Add(DefaultExtension) {
		t.Fatalf("expected expiry +24h, got %v", extended.ExpiresAt)
	}

	e := f.auditLog.lastEntry(t)
	if e.EventType != audit.EventAccessExtended {
		t.Fatalf("expected ACCESS_EXTENDED entry, got %s", e.EventType)
	}
}

func TestService_Extend_RejectsNonPositiveDelta(t *testing.T) {
	f := newEngineFixture(time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))

	if _, err := f.svc.Extend(context.Background(), "g-1", 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero delta, got %v", err)
	}
	if _, err := f.svc.Extend(context.Background(), "g-1", -time.Hour); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative delta, got %v", err)
	}
}

func TestService_RecordProviderAccess_UploadNotifiesOwner(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	f := newEngineFixture(now)
	seedPendingRequest(t, f, "req-1", "Dr. Emily Thompson")

	g, err := f.svc.Approve(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("Approve error: %v", err)
	}

	updated, err := f.svc.RecordProviderAccess(context.Background(), g.ID, "MRI Scan Results", ProviderAccessUpload)
	if err != nil {
		t.Fatalf("RecordProviderAccess error: %v", err)
	}
	if updated.AccessCount != 1 {
		t.Fatalf("expected AccessCount 1, got %d", updated.AccessCount)
	}

	e := f.auditLog.lastEntry(t)
	if e.EventType != audit.EventDocumentUploaded {
		t.Fatalf("expected DOCUMENT_UPLOADED, got %s", e.EventType)
	}
	if e.Actor != "Dr. Emily Thompson" || e.Location != "City General Hospital" {
		t.Fatalf("expected provider actor/institution location, got %s / %s", e.Actor, e.Location)
	}

	last := f.notifs.items[len(f.notifs.items)-1]
	if last.Type != notifications.TypeDocumentUploaded {
		t.Fatalf("expected DOCUMENT_UPLOADED notification, got %s", last.Type)
	}
	if last.Message != "Dr. Emily Thompson uploaded a new document: MRI Scan Results" {
		t.Fatalf("unexpected notification message: %s", last.Message)
	}
	if last.IsRead {
		t.Fatalf("expected unread notification")
	}
}

func TestService_SweepExpiring_OneWarningPerGrant(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	f := newEngineFixture(now)

	_ = f.grants.Create(context.Background(), Grant{
		ID:          "g-soon",
		Provider:    "Dr. Emily Thompson",
		Institution: "Family Health Clinic",
		GrantedAt:   now.Add(-24 * time.Hour),
		ExpiresAt:   now.Add(24 * time.Hour),
	})
	_ = f.grants.Create(context.Background(), Grant{
		ID:          "g-far",
		Provider:    "Dr. James Chen",
		Institution: "Heart & Vascular Center",
		GrantedAt:   now,
		ExpiresAt:   now.Add(7 * 24 * time.Hour),
	})

	n, err := f.svc.SweepExpiring(context.Background())
	if err != nil {
		t.Fatalf("SweepExpiring error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 warning, got %d", n)
	}

	last := f.notifs.items[len(f.notifs.items)-1]
	if last.Type != notifications.TypeAccessExpiring {
		t.Fatalf("expected ACCESS_EXPIRING, got %s", last.Type)
	}

	// segundo sweep: sin duplicados
	n, err = f.svc.SweepExpiring(context.Background())
	if err != nil {
		t.Fatalf("SweepExpiring #2 error: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no duplicate warnings, got %d", n)
	}
}

func TestService_SweepExpiring_ExtendReenablesWarning(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	f := newEngineFixture(now)

	_ = f.grants.Create(context.Background(), Grant{
		ID:          "g-1",
		Provider:    "Dr. Emily Thompson",
		Institution: "Family Health Clinic",
		GrantedAt:   now.Add(-24 * time.Hour),
		ExpiresAt:   now.Add(12 * time.Hour),
	})

	if n, _ := f.svc.SweepExpiring(context.Background()); n != 1 {
		t.Fatalf("expected first warning")
	}

	// extender 7 días lo saca de la ventana y rearma el aviso
	if _, err := f.svc.Extend(context.Background(), "g-1", 7*24*time.Hour); err != nil {
		t.Fatalf("Extend error: %v", err)
	}
	if n, _ := f.svc.SweepExpiring(context.Background()); n != 0 {
		t.Fatalf("expected no warning outside window")
	}

	// el reloj avanza hasta volver a entrar en ventana
	later := now.Add(6 * 24 * time.Hour)
	f.svc.now = func() time.Time { return later }
	if n, _ := f.svc.SweepExpiring(context.Background()); n != 1 {
		t.Fatalf("expected re-armed warning after extend")
	}
}

func TestService_EmergencyViewed_IdempotentOnRedelivery(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	f := newEngineFixture(now)

	ev := EmergencyEvent{
		Actor:     "J. Smith (Responder)",
		Resource:  "Emergency Data Pack",
		Location:  "City EMS",
		Timestamp: now,
	}

	if err := f.svc.EmergencyViewed(context.Background(), ev); err != nil {
		t.Fatalf("EmergencyViewed error: %v", err)
	}
	if err := f.svc.EmergencyViewed(context.Background(), ev); err != nil {
		t.Fatalf("EmergencyViewed redelivery error: %v", err)
	}

	if len(f.auditLog.entries) != 1 {
		t.Fatalf("expected exactly 1 audit entry, got %d", len(f.auditLog.entries))
	}
	e := f.auditLog.entries[0]
	if e.EventType != audit.EventEmergencyAccessViewed {
		t.Fatalf("expected EMERGENCY_ACCESS_VIEWED, got %s", e.EventType)
	}
	if e.Timestamp != now {
		t.Fatalf("expected event timestamp preserved, got %v", e.Timestamp)
	}

	if len(f.notifs.items) != 1 {
		t.Fatalf("expected exactly 1 notification, got %d", len(f.notifs.items))
	}
	if f.notifs.items[0].Type != notifications.TypeEmergencyAccessViewed {
		t.Fatalf("expected EMERGENCY_ACCESS_VIEWED notification, got %s", f.notifs.items[0].Type)
	}

	if len(f.toasts.errs) != 1 {
		t.Fatalf("expected exactly 1 error toast, got %#v", f.toasts.errs)
	}
}

func TestService_SubmitRequest_QueuesAndNotifies(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	f := newEngineFixture(now)

	req, err := f.svc.SubmitRequest(context.Background(), SubmitRequestInput{
		Provider:       "Dr. Maria Rodriguez",
		Institution:    "City General Hospital",
		Reason:         "Routine follow-up appointment",
		DataCategories: []string{"Lab Results"},
	})
	if err != nil {
		t.Fatalf("SubmitRequest error: %v", err)
	}
	if req.Status != RequestPending {
		t.Fatalf("expected pending status, got %s", req.Status)
	}

	if len(f.notifs.items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(f.notifs.items))
	}
	if f.notifs.items[0].Type != notifications.TypeAccessRequest {
		t.Fatalf("expected ACCESS_REQUEST, got %s", f.notifs.items[0].Type)
	}

	// provider vacío => inválido
	if _, err := f.svc.SubmitRequest(context.Background(), SubmitRequestInput{Institution: "X"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
