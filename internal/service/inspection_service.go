package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/eufiscalizo-api/internal/dto"
	"github.com/noah-isme/eufiscalizo-api/internal/models"
	appErrors "github.com/noah-isme/eufiscalizo-api/pkg/errors"
	"github.com/noah-isme/eufiscalizo-api/pkg/export"
)

// Default admin responses per target stage, used when the admin leaves the field empty.
var cannedAdminResponses = map[models.InspectionStatus]string{
	models.StatusInProgress: "Fiscalização recebida e direcionada para o setor responsável. Acompanharemos o andamento.",
	models.StatusResolved:   "Problema foi identificado e solucionado pela equipe de manutenção.",
}

// CannedAdminResponse returns the default response for a stage, or "".
func CannedAdminResponse(status models.InspectionStatus) string {
	return cannedAdminResponses[status]
}

type inspectionRegistry interface {
	List(ctx context.Context) ([]models.Inspection, error)
	Get(ctx context.Context, id string) (*models.Inspection, error)
	Create(ctx context.Context, form models.InspectionForm, actorID, actorName string) (*models.Inspection, error)
	Modify(ctx context.Context, id string, fn func(*models.Inspection) error) (*models.Inspection, error)
}

type inspectionMetrics interface {
	RecordInspectionCreated(category string)
	RecordTransition(from, to models.InspectionStatus)
	RecordFeedback(rating int)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

// InspectionService enforces who may do what to an inspection and in which order.
type InspectionService struct {
	registry  inspectionRegistry
	validator *validator.Validate
	logger    *zap.Logger
	metrics   inspectionMetrics
	renderers map[dto.ExportFormat]datasetRenderer
	now       func() time.Time
}

// NewInspectionService wires the policy layer. metrics may be nil.
func NewInspectionService(registry inspectionRegistry, validate *validator.Validate, metrics inspectionMetrics, logger *zap.Logger) *InspectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	registerInspectionValidations(validate)
	pdf := export.NewPDFExporter()
	pdf.Widths = map[string]float64{"id": 2.2, "title": 2.5, "location": 1.5, "student": 1.5, "created_at": 1.4, "rating": 0.6}
	return &InspectionService{
		registry:  registry,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		renderers: map[dto.ExportFormat]datasetRenderer{
			dto.ExportCSV: export.NewCSVExporter(),
			dto.ExportPDF: pdf,
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func registerInspectionValidations(v *validator.Validate) {
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return isKnownCategory(fl.Field().String())
	})
	_ = v.RegisterValidation("inspection_status", func(fl validator.FieldLevel) bool {
		return models.InspectionStatus(fl.Field().String()).Valid()
	})
}

func isKnownCategory(category string) bool {
	for _, c := range models.InspectionCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Submit records a new report for the signed-in student.
func (s *InspectionService) Submit(ctx context.Context, actor models.Actor, req dto.CreateInspectionRequest) (*models.Inspection, error) {
	if actor.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can submit inspections")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid inspection payload")
	}

	inspection, err := s.registry.Create(ctx, req.Form(), actor.ID, actor.Name)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordInspectionCreated(inspection.Category)
	}
	return inspection, nil
}

// Advance moves an inspection to its immediate successor stage.
func (s *InspectionService) Advance(ctx context.Context, actor models.Actor, id string, req dto.AdvanceStatusRequest) (*models.Inspection, error) {
	if actor.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can change inspection status")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	var from models.InspectionStatus
	updated, err := s.registry.Modify(ctx, id, func(in *models.Inspection) error {
		if !in.Status.CanTransitionTo(req.Status) {
			return appErrors.Clone(appErrors.ErrIllegalTransition,
				fmt.Sprintf("cannot move inspection from %s to %s", in.Status, req.Status))
		}
		from = in.Status
		in.Status = req.Status
		in.UpdatedAt = s.now()

		response := CannedAdminResponse(req.Status)
		if req.AdminResponse != nil && *req.AdminResponse != "" {
			response = *req.AdminResponse
		}
		if response != "" {
			in.AdminResponse = &response
		}
		adminID := actor.ID
		in.AdminID = &adminID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("inspection status changed",
		zap.String("inspection_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(updated.Status)),
		zap.String("admin_id", actor.ID),
	)
	if s.metrics != nil {
		s.metrics.RecordTransition(from, updated.Status)
	}
	return updated, nil
}

// RateResolution lets the owning student rate a resolved inspection once.
func (s *InspectionService) RateResolution(ctx context.Context, actor models.Actor, id string, req dto.FeedbackRequest) (*models.Inspection, error) {
	if actor.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the reporting student can rate an inspection")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "rating must be between 1 and 5")
	}

	updated, err := s.registry.Modify(ctx, id, func(in *models.Inspection) error {
		if in.StudentID != actor.ID {
			return appErrors.Clone(appErrors.ErrForbidden, "only the reporting student can rate an inspection")
		}
		if in.Status != models.StatusResolved {
			return appErrors.ErrFeedbackNotAllowed
		}
		if in.Feedback != nil {
			return appErrors.ErrFeedbackExists
		}
		in.Feedback = &models.Feedback{Rating: req.Rating, Comment: req.Comment, CreatedAt: s.now()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("inspection rated", zap.String("inspection_id", id), zap.Int("rating", req.Rating))
	if s.metrics != nil {
		s.metrics.RecordFeedback(req.Rating)
	}
	return updated, nil
}

// AllowedActions lists what actor may do next with the inspection: the next status for
// admins, or "feedback" for the owning student once resolved.
func (s *InspectionService) AllowedActions(inspection *models.Inspection, actor models.Actor) []string {
	actions := make([]string, 0, 1)
	if inspection == nil {
		return actions
	}
	switch actor.Role {
	case models.RoleAdmin:
		if next, ok := inspection.Status.NextStatus(); ok {
			actions = append(actions, string(next))
		}
	case models.RoleStudent:
		if inspection.StudentID == actor.ID && inspection.Status == models.StatusResolved && inspection.Feedback == nil {
			actions = append(actions, models.ActionFeedback)
		}
	}
	return actions
}

// List returns the inspections visible to actor after filtering. Students only see their own.
func (s *InspectionService) List(ctx context.Context, actor models.Actor, filter models.InspectionFilter) ([]models.Inspection, error) {
	items, err := s.visible(ctx, actor)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleStudent {
		filter.StudentID = ""
	}
	return Apply(items, filter), nil
}

// Stats counts the inspections visible to actor per status.
func (s *InspectionService) Stats(ctx context.Context, actor models.Actor) (models.InspectionStats, error) {
	items, err := s.visible(ctx, actor)
	if err != nil {
		return models.InspectionStats{}, err
	}
	stats := CountByStatus(items)
	stats.AverageRating = AverageRating(items)
	return stats, nil
}

// Categories returns the form catalogue followed by any other category already in use.
func (s *InspectionService) Categories(ctx context.Context) ([]string, error) {
	items, err := s.registry.List(ctx)
	if err != nil {
		return nil, err
	}
	out := append([]string(nil), models.InspectionCategories...)
	for _, c := range Categories(items) {
		if !isKnownCategory(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Get returns one inspection with the actions actor may take on it.
func (s *InspectionService) Get(ctx context.Context, actor models.Actor, id string) (*dto.InspectionDetail, error) {
	inspection, err := s.registry.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && inspection.StudentID != actor.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "inspection belongs to another student")
	}
	detail := &dto.InspectionDetail{
		Inspection:     *inspection,
		AllowedActions: s.AllowedActions(inspection, actor),
	}
	if inspection.Feedback != nil {
		detail.RatingLabel = models.RatingLabel(inspection.Feedback.Rating)
	}
	return detail, nil
}

// Export renders the filtered collection for admins as CSV or PDF.
func (s *InspectionService) Export(ctx context.Context, actor models.Actor, format dto.ExportFormat, filter models.InspectionFilter) (*dto.ExportResult, error) {
	if actor.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can export inspections")
	}
	if format == "" {
		format = dto.ExportCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	items, err := s.List(ctx, actor, filter)
	if err != nil {
		return nil, err
	}
	body, err := renderer.Render(inspectionDataset(items))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("inspections exported", zap.String("format", string(format)), zap.Int("rows", len(items)))
	return &dto.ExportResult{
		Filename:    fmt.Sprintf("fiscalizacoes-%s.%s", s.now().Format("20060102-150405"), format),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func (s *InspectionService) visible(ctx context.Context, actor models.Actor) ([]models.Inspection, error) {
	items, err := s.registry.List(ctx)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case models.RoleAdmin:
		return items, nil
	case models.RoleStudent:
		return ForStudent(items, actor.ID), nil
	default:
		return nil, appErrors.ErrUnauthorized
	}
}

var exportHeaders = []string{"id", "title", "category", "location", "status", "student", "created_at", "rating"}

func inspectionDataset(items []models.Inspection) export.Dataset {
	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		rating := ""
		if item.Feedback != nil {
			rating = strconv.Itoa(item.Feedback.Rating)
		}
		rows = append(rows, map[string]string{
			"id":         item.ID,
			"title":      item.Title,
			"category":   item.Category,
			"location":   item.Location,
			"status":     item.Status.Label(),
			"student":    item.StudentName,
			"created_at": item.CreatedAt.Format("02/01/2006 15:04"),
			"rating":     rating,
		})
	}
	return export.Dataset{Title: "Fiscalizações", Headers: exportHeaders, Rows: rows}
}
