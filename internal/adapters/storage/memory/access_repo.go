package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"biovault/internal/domain/access"
)

type accessRequestsRepo struct {
	mu   sync.RWMutex
	byID map[string]access.Request
}

func NewAccessRequestsRepo() access.RequestRepository {
	return &accessRequestsRepo{
		byID: make(map[string]access.Request),
	}
}

func (r *accessRequestsRepo) Create(ctx context.Context, req access.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.ID == "" {
		return errors.New("request id required")
	}
	if _, exists := r.byID[req.ID]; exists {
		return errors.New("request already exists")
	}
	r.byID[req.ID] = req
	return nil
}

func (r *accessRequestsRepo) GetByID(ctx context.Context, id string) (access.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.byID[id]
	if !ok {
		return access.Request{}, ErrNotFound
	}
	return req, nil
}

func (r *accessRequestsRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *accessRequestsRepo) List(ctx context.Context) ([]access.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]access.Request, 0, len(r.byID))
	for _, req := range r.byID {
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

type accessGrantsRepo struct {
	mu   sync.RWMutex
	byID map[string]access.Grant
}

func NewAccessGrantsRepo() access.GrantRepository {
	return &accessGrantsRepo{
		byID: make(map[string]access.Grant),
	}
}

func (r *accessGrantsRepo) Create(ctx context.Context, g access.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g.ID == "" {
		return errors.New("grant id required")
	}
	if _, exists := r.byID[g.ID]; exists {
		return errors.New("grant already exists")
	}
	r.byID[g.ID] = g
	return nil
}

func (r *accessGrantsRepo) Update(ctx context.Context, g access.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g.ID == "" {
		return errors.New("grant id required")
	}
	if _, exists := r.byID[g.ID]; !exists {
		return ErrNotFound
	}
	r.byID[g.ID] = g
	return nil
}

func (r *accessGrantsRepo) GetByID(ctx context.Context, id string) (access.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byID[id]
	if !ok {
		return access.Grant{}, ErrNotFound
	}
	return g, nil
}

func (r *accessGrantsRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// List ordena por GrantedAt descendente: el acceso más reciente primero.
func (r *accessGrantsRepo) List(ctx context.Context) ([]access.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]access.Grant, 0, len(r.byID))
	for _, g := range r.byID {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GrantedAt.Equal(out[j].GrantedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].GrantedAt.After(out[j].GrantedAt)
	})
	return out, nil
}
