package repository

import (
	"context"
	"database/sql"
	"sync"

	"github.com/noah-isme/eufiscalizo-api/internal/models"
)

// MemoryUserRepository is the in-process principal registry. Order is registration order.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users []*models.User
}

// NewMemoryUserRepository seeds the registry with the provided principals.
func NewMemoryUserRepository(seed []models.User) *MemoryUserRepository {
	users := make([]*models.User, 0, len(seed))
	for i := range seed {
		users = append(users, seed[i].Clone())
	}
	return &MemoryUserRepository{users: users}
}

// FindByEmail returns the first principal registered with the exact email.
func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return u.Clone(), nil
		}
	}
	return nil, sql.ErrNoRows
}

// FindByID returns a principal by identifier.
func (r *MemoryUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ID == id {
			return u.Clone(), nil
		}
	}
	return nil, sql.ErrNoRows
}

// Create appends a principal. Duplicate emails are accepted.
func (r *MemoryUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, user.Clone())
	return nil
}

// List returns every registered principal.
func (r *MemoryUserRepository) List(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u.Clone())
	}
	return out, nil
}
