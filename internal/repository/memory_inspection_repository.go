package repository

import (
	"context"
	"database/sql"
	"sync"

	"github.com/noah-isme/eufiscalizo-api/internal/models"
)

// MemoryInspectionRepository keeps inspections in process memory, newest first.
// Records are copied on the way in and out so callers never share state with the store.
type MemoryInspectionRepository struct {
	mu    sync.RWMutex
	items []*models.Inspection
}

// NewMemoryInspectionRepository builds a repository holding the given seed records.
// Seeds are expected newest first.
func NewMemoryInspectionRepository(seed []models.Inspection) *MemoryInspectionRepository {
	items := make([]*models.Inspection, 0, len(seed))
	for i := range seed {
		items = append(items, seed[i].Clone())
	}
	return &MemoryInspectionRepository{items: items}
}

// List returns a snapshot of the collection.
func (r *MemoryInspectionRepository) List(ctx context.Context) ([]models.Inspection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Inspection, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, *item.Clone())
	}
	return out, nil
}

// Get returns an inspection by id or sql.ErrNoRows.
func (r *MemoryInspectionRepository) Get(ctx context.Context, id string) (*models.Inspection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if idx := r.indexOf(id); idx >= 0 {
		return r.items[idx].Clone(), nil
	}
	return nil, sql.ErrNoRows
}

// Insert places the inspection at the front of the collection.
func (r *MemoryInspectionRepository) Insert(ctx context.Context, inspection *models.Inspection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append([]*models.Inspection{inspection.Clone()}, r.items...)
	return nil
}

// UpdateWhere applies fn to a copy of the matching record and swaps it in when fn succeeds.
func (r *MemoryInspectionRepository) UpdateWhere(ctx context.Context, id string, fn func(*models.Inspection) error) (*models.Inspection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return nil, sql.ErrNoRows
	}
	updated := r.items[idx].Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	r.items[idx] = updated
	return updated.Clone(), nil
}

func (r *MemoryInspectionRepository) indexOf(id string) int {
	for i, item := range r.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
