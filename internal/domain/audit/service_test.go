package audit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testRepo struct {
	entries []Entry
}

func (r *testRepo) Append(ctx context.Context, e Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

func (r *testRepo) List(ctx context.Context) ([]Entry, error) {
	out := make([]Entry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}

func (r *testRepo) ListByActor(ctx context.Context, actor string) ([]Entry, error) {
	out := make([]Entry, 0)
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Actor == actor {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func TestService_Record_FillsIDAndClock(t *testing.T) {
	repo := &testRepo{}
	svc := NewService(repo)

	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	e, err := svc.Record(context.Background(), RecordInput{
		EventType: EventAccessApproved,
		Actor:     ActorOwner,
		Resource:  "Dr. Maria Rodriguez",
		Location:  LocationLocal,
	})
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if e.ID == "" {
		t.Fatalf("expected generated id")
	}
	if e.Timestamp != now {
		t.Fatalf("expected service clock, got %v", e.Timestamp)
	}
}

func TestService_Record_PreservesExplicitTimestamp(t *testing.T) {
	repo := &testRepo{}
	svc := NewService(repo)

	ts := time.Date(2026, 8, 30, 23, 45, 0, 0, time.UTC)
	e, err := svc.Record(context.Background(), RecordInput{
		EventType: EventEmergencyAccessViewed,
		Actor:     "J. Smith (Responder)",
		Resource:  "Emergency Data Pack",
		Location:  "City EMS",
		Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if e.Timestamp != ts {
		t.Fatalf("expected explicit timestamp preserved, got %v", e.Timestamp)
	}
}

func TestService_Record_RejectsIncompleteInput(t *testing.T) {
	svc := NewService(&testRepo{})

	if _, err := svc.Record(context.Background(), RecordInput{Actor: "You", Resource: "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without event type, got %v", err)
	}
	if _, err := svc.Record(context.Background(), RecordInput{EventType: EventAccessDenied, Resource: "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without actor, got %v", err)
	}
}

func TestService_List_NewestFirst(t *testing.T) {
	repo := &testRepo{}
	svc := NewService(repo)

	base := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	for i, typ := range []EventType{EventDocumentUploaded, EventAccessApproved, EventDocumentViewed} {
		ts := base.Add(time.Duration(i) * time.Hour)
		if _, err := svc.Record(context.Background(), RecordInput{
			EventType: typ,
			Actor:     ActorOwner,
			Resource:  "r",
			Location:  LocationLocal,
			Timestamp: ts,
		}); err != nil {
			t.Fatalf("Record error: %v", err)
		}
	}

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(items))
	}
	if items[0].EventType != EventDocumentViewed || items[2].EventType != EventDocumentUploaded {
		t.Fatalf("expected newest first, got %#v", items)
	}
}

func TestService_ListByActor_RequiresActor(t *testing.T) {
	svc := NewService(&testRepo{})

	if _, err := svc.ListByActor(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty actor, got %v", err)
	}
}
