package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"biovault/internal/domain/users"
)

var (
	ErrNotFound = errors.New("not found")
)

type usersRepo struct {
	mu            sync.RWMutex
	byID          map[string]users.User
	byEmergencyID map[string]string // emergencyID -> userID
}

func NewUsersRepo() users.Repository {
	return &usersRepo{
		byID:          make(map[string]users.User),
		byEmergencyID: make(map[string]string),
	}
}

func (r *usersRepo) Create(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID == "" {
		return errors.New("user id required")
	}
	if _, exists := r.byID[u.ID]; exists {
		return errors.New("user already exists")
	}
	r.byID[u.ID] = u
	if eid := strings.TrimSpace(u.EmergencyID); eid != "" {
		r.byEmergencyID[eid] = u.ID
	}
	return nil
}

func (r *usersRepo) Update(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID == "" {
		return errors.New("user id required")
	}
	prev, exists := r.byID[u.ID]
	if !exists {
		return ErrNotFound
	}

	// Mantener el índice por emergency id coherente si cambió.
	if prev.EmergencyID != u.EmergencyID {
		delete(r.byEmergencyID, prev.EmergencyID)
		if eid := strings.TrimSpace(u.EmergencyID); eid != "" {
			r.byEmergencyID[eid] = u.ID
		}
	}

	r.byID[u.ID] = u
	return nil
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return users.User{}, ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) GetByEmergencyID(ctx context.Context, emergencyID string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmergencyID[strings.TrimSpace(emergencyID)]
	if !ok {
		return users.User{}, ErrNotFound
	}
	u, ok := r.byID[id]
	if !ok {
		return users.User{}, ErrNotFound
	}
	return u, nil
}
