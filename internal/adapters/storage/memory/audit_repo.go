package memory

import (
	"context"
	"errors"
	"sync"

	"biovault/internal/domain/audit"
)

// auditRepo es append-only: un slice que solo crece. No hay Update ni
// Delete a propósito.
type auditRepo struct {
	mu      sync.RWMutex
	entries []audit.Entry
}

func NewAuditRepo() audit.Repository {
	return &auditRepo{}
}

func (r *auditRepo) Append(ctx context.Context, e audit.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		return errors.New("entry id required")
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *auditRepo) List(ctx context.Context) ([]audit.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]audit.Entry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}

func (r *auditRepo) ListByActor(ctx context.Context, actor string) ([]audit.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]audit.Entry, 0)
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Actor == actor {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}
