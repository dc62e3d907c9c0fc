package memory

import (
	"context"
	"errors"
	"sync"

	"biovault/internal/domain/notifications"
)

type notificationsRepo struct {
	mu    sync.RWMutex
	items []notifications.Notification
	byID  map[string]int // id -> índice en items
}

func NewNotificationsRepo() notifications.Repository {
	return &notificationsRepo{
		byID: make(map[string]int),
	}
}

func (r *notificationsRepo) Create(ctx context.Context, n notifications.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == "" {
		return errors.New("notification id required")
	}
	if _, exists := r.byID[n.ID]; exists {
		return errors.New("notification already exists")
	}
	r.byID[n.ID] = len(r.items)
	r.items = append(r.items, n)
	return nil
}

func (r *notificationsRepo) List(ctx context.Context) ([]notifications.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]notifications.Notification, 0, len(r.items))
	for i := len(r.items) - 1; i >= 0; i-- {
		out = append(out, r.items[i])
	}
	return out, nil
}

// MarkRead devuelve el sentinel del dominio: el service decide si un id
// ausente es error o no.
func (r *notificationsRepo) MarkRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byID[id]
	if !ok {
		return notifications.ErrNotFound
	}
	r.items[idx].IsRead = true
	return nil
}

func (r *notificationsRepo) MarkAllRead(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		r.items[i].IsRead = true
	}
	return nil
}

func (r *notificationsRepo) UnreadCount(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for i := range r.items {
		if !r.items[i].IsRead {
			n++
		}
	}
	return n, nil
}
