package notifications

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testRepo struct {
	items []Notification
}

func (r *testRepo) Create(ctx context.Context, n Notification) error {
	r.items = append(r.items, n)
	return nil
}

func (r *testRepo) List(ctx context.Context) ([]Notification, error) {
	out := make([]Notification, 0, len(r.items))
	for i := len(r.items) - 1; i >= 0; i-- {
		out = append(out, r.items[i])
	}
	return out, nil
}

func (r *testRepo) MarkRead(ctx context.Context, id string) error {
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].IsRead = true
			return nil
		}
	}
	return ErrNotFound
}

func (r *testRepo) MarkAllRead(ctx context.Context) error {
	for i := range r.items {
		r.items[i].IsRead = true
	}
	return nil
}

func (r *testRepo) UnreadCount(ctx context.Context) (int, error) {
	n := 0
	for i := range r.items {
		if !r.items[i].IsRead {
			n++
		}
	}
	return n, nil
}

func TestService_Push_CreatesUnread(t *testing.T) {
	repo := &testRepo{}
	svc := NewService(repo)

	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	n, err := svc.Push(context.Background(), PushInput{
		Type:    TypeAccessRequest,
		Message: "Dr. Maria Rodriguez requested access to your records",
		LinkTo:  LinkAccess,
	})
	if err != nil {
		t.Fatalf("Push error: %v", err)
	}
	if n.ID == "" {
		t.Fatalf("expected generated id")
	}
	if n.IsRead {
		t.Fatalf("new notifications must start unread")
	}
	if n.Timestamp != now {
		t.Fatalf("expected service clock timestamp, got %v", n.Timestamp)
	}
}

func TestService_Push_RequiresTypeAndMessage(t *testing.T) {
	svc := NewService(&testRepo{})

	if _, err := svc.Push(context.Background(), PushInput{Message: "hi"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without type, got %v", err)
	}
	if _, err := svc.Push(context.Background(), PushInput{Type: TypeGeneral, Message: "   "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without message, got %v", err)
	}
}

func TestService_MarkRead_Idempotent(t *testing.T) {
	repo := &testRepo{}
	svc := NewService(repo)

	n, err := svc.Push(context.Background(), PushInput{Type: TypeGeneral, Message: "hello", LinkTo: LinkDashboard})
	if err != nil {
		t.Fatalf("Push error: %v", err)
	}

	if err := svc.MarkRead(context.Background(), n.ID); err != nil {
		t.Fatalf("MarkRead error: %v", err)
	}
	// repetir no es error
	if err := svc.MarkRead(context.Background(), n.ID); err != nil {
		t.Fatalf("MarkRead #2 error: %v", err)
	}
	// id desconocido tampoco
	if err := svc.MarkRead(context.Background(), "missing"); err != nil {
		t.Fatalf("MarkRead unknown id error: %v", err)
	}
	// id vacío sí es inválido
	if err := svc.MarkRead(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty id, got %v", err)
	}
}

func TestService_UnreadCount_TracksMarkAllRead(t *testing.T) {
	repo := &testRepo{}
	svc := NewService(repo)

	for i := 0; i < 3; i++ {
		if _, err := svc.Push(context.Background(), PushInput{Type: TypeGeneral, Message: "msg"}); err != nil {
			t.Fatalf("Push error: %v", err)
		}
	}

	count, err := svc.UnreadCount(context.Background())
	if err != nil {
		t.Fatalf("UnreadCount error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 unread, got %d", count)
	}

	if err := svc.MarkAllRead(context.Background()); err != nil {
		t.Fatalf("MarkAllRead error: %v", err)
	}
	count, _ = svc.UnreadCount(context.Background())
	if count != 0 {
		t.Fatalf("expected 0 unread after mark-all, got %d", count)
	}
}
