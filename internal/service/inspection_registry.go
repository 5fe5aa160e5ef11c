package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/eufiscalizo-api/internal/models"
	appErrors "github.com/noah-isme/eufiscalizo-api/pkg/errors"
)

type inspectionRepository interface {
	List(ctx context.Context) ([]models.Inspection, error)
	Get(ctx context.Context, id string) (*models.Inspection, error)
	Insert(ctx context.Context, inspection *models.Inspection) error
	UpdateWhere(ctx context.Context, id string, fn func(*models.Inspection) error) (*models.Inspection, error)
}

// InspectionRegistry owns the inspection collection. It applies mutations as asked and
// leaves lifecycle rules to InspectionService.
type InspectionRegistry struct {
	repo   inspectionRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewInspectionRegistry constructs a registry over the given repository.
func NewInspectionRegistry(repo inspectionRepository, logger *zap.Logger) *InspectionRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InspectionRegistry{repo: repo, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// List returns every inspection, newest first.
func (r *InspectionRegistry) List(ctx context.Context) ([]models.Inspection, error) {
	items, err := r.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list inspections")
	}
	return items, nil
}

// Get returns one inspection.
func (r *InspectionRegistry) Get(ctx context.Context, id string) (*models.Inspection, error) {
	item, err := r.repo.Get(ctx, id)
	if err != nil {
		return nil, r.translate(err, "failed to load inspection")
	}
	return item, nil
}

// Create records a new inspection in the Received stage at the front of the collection.
func (r *InspectionRegistry) Create(ctx context.Context, form models.InspectionForm, actorID, actorName string) (*models.Inspection, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate inspection id")
	}
	now := r.now()
	inspection := &models.Inspection{
		ID:          id.String(),
		StudentID:   actorID,
		StudentName: actorName,
		Title:       form.Title,
		Description: form.Description,
		Category:    form.Category,
		Location:    form.Location,
		Status:      models.StatusReceived,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if form.MediaURL != nil && *form.MediaURL != "" {
		media := *form.MediaURL
		inspection.MediaURL = &media
	}

	if err := r.repo.Insert(ctx, inspection); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store inspection")
	}
	r.logger.Info("inspection created", zap.String("inspection_id", inspection.ID), zap.String("student_id", actorID))
	return inspection, nil
}

// UpdateStatus sets the status and refreshes updatedAt. A nil or empty response keeps the
// stored one.
func (r *InspectionRegistry) UpdateStatus(ctx context.Context, id string, status models.InspectionStatus, adminResponse *string) error {
	_, err := r.update(ctx, id, func(in *models.Inspection) error {
		in.Status = status
		in.UpdatedAt = r.now()
		if adminResponse != nil && *adminResponse != "" {
			resp := *adminResponse
			in.AdminResponse = &resp
		}
		return nil
	})
	return err
}

// AddFeedback attaches feedback, replacing any previous one. No status check is applied.
func (r *InspectionRegistry) AddFeedback(ctx context.Context, id string, rating int, comment string) error {
	_, err := r.update(ctx, id, func(in *models.Inspection) error {
		in.Feedback = &models.Feedback{Rating: rating, Comment: comment, CreatedAt: r.now()}
		return nil
	})
	return err
}

// Modify applies fn to the stored record atomically. An error from fn leaves the record
// unchanged and is returned as is.
func (r *InspectionRegistry) Modify(ctx context.Context, id string, fn func(*models.Inspection) error) (*models.Inspection, error) {
	return r.update(ctx, id, fn)
}

func (r *InspectionRegistry) update(ctx context.Context, id string, fn func(*models.Inspection) error) (*models.Inspection, error) {
	updated, err := r.repo.UpdateWhere(ctx, id, fn)
	if err != nil {
		return nil, r.translate(err, "failed to update inspection")
	}
	return updated, nil
}

func (r *InspectionRegistry) translate(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "inspection not found")
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(fmt.Errorf("%s: %w", message, err), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
