package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/eufiscalizo-api/internal/models"
)

const inspectionColumns = `id, student_id, student_name, title, description, category, location, status, media_url,
created_at, updated_at, admin_response, admin_id, feedback_rating, feedback_comment, feedback_created_at`

type inspectionRow struct {
	ID                string         `db:"id"`
	StudentID         string         `db:"student_id"`
	StudentName       string         `db:"student_name"`
	Title             string         `db:"title"`
	Description       string         `db:"description"`
	Category          string         `db:"category"`
	Location          string         `db:"location"`
	Status            string         `db:"status"`
	MediaURL          sql.NullString `db:"media_url"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
	AdminResponse     sql.NullString `db:"admin_response"`
	AdminID           sql.NullString `db:"admin_id"`
	FeedbackRating    sql.NullInt64  `db:"feedback_rating"`
	FeedbackComment   sql.NullString `db:"feedback_comment"`
	FeedbackCreatedAt sql.NullTime   `db:"feedback_created_at"`
}

func (row inspectionRow) toModel() models.Inspection {
	out := models.Inspection{
		ID:            row.ID,
		StudentID:     row.StudentID,
		StudentName:   row.StudentName,
		Title:         row.Title,
		Description:   row.Description,
		Category:      row.Category,
		Location:      row.Location,
		Status:        models.InspectionStatus(row.Status),
		MediaURL:      nullableString(row.MediaURL),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
		AdminResponse: nullableString(row.AdminResponse),
		AdminID:       nullableString(row.AdminID),
	}
	if row.FeedbackRating.Valid {
		out.Feedback = &models.Feedback{
			Rating:    int(row.FeedbackRating.Int64),
			Comment:   row.FeedbackComment.String,
			CreatedAt: row.FeedbackCreatedAt.Time,
		}
	}
	return out
}

func rowFromModel(in *models.Inspection) inspectionRow {
	row := inspectionRow{
		ID:            in.ID,
		StudentID:     in.StudentID,
		StudentName:   in.StudentName,
		Title:         in.Title,
		Description:   in.Description,
		Category:      in.Category,
		Location:      in.Location,
		Status:        string(in.Status),
		MediaURL:      toNullString(in.MediaURL),
		CreatedAt:     in.CreatedAt,
		UpdatedAt:     in.UpdatedAt,
		AdminResponse: toNullString(in.AdminResponse),
		AdminID:       toNullString(in.AdminID),
	}
	if in.Feedback != nil {
		row.FeedbackRating = sql.NullInt64{Int64: int64(in.Feedback.Rating), Valid: true}
		row.FeedbackComment = sql.NullString{String: in.Feedback.Comment, Valid: true}
		row.FeedbackCreatedAt = sql.NullTime{Time: in.Feedback.CreatedAt, Valid: true}
	}
	return row
}

// InspectionRepository stores inspections in PostgreSQL or SQLite.
type InspectionRepository struct {
	db *sqlx.DB
}

// NewInspectionRepository creates the repository.
func NewInspectionRepository(db *sqlx.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

// List returns every inspection, newest first.
func (r *InspectionRepository) List(ctx context.Context) ([]models.Inspection, error) {
	var rows []inspectionRow
	query := `SELECT ` + inspectionColumns + ` FROM inspections ORDER BY created_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list inspections: %w", err)
	}
	out := make([]models.Inspection, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// Get returns one inspection or sql.ErrNoRows.
func (r *InspectionRepository) Get(ctx context.Context, id string) (*models.Inspection, error) {
	return r.get(ctx, r.db, id)
}

// Insert stores a new inspection.
func (r *InspectionRepository) Insert(ctx context.Context, inspection *models.Inspection) error {
	const query = `INSERT INTO inspections (id, student_id, student_name, title, description, category, location, status, media_url,
created_at, updated_at, admin_response, admin_id, feedback_rating, feedback_comment, feedback_created_at)
VALUES (:id, :student_id, :student_name, :title, :description, :category, :location, :status, :media_url,
:created_at, :updated_at, :admin_response, :admin_id, :feedback_rating, :feedback_comment, :feedback_created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rowFromModel(inspection)); err != nil {
		return fmt.Errorf("insert inspection: %w", err)
	}
	return nil
}

// UpdateWhere loads the record inside a transaction, applies fn and writes the mutable
// columns back. Returns sql.ErrNoRows when id is unknown.
func (r *InspectionRepository) UpdateWhere(ctx context.Context, id string, fn func(*models.Inspection) error) (*models.Inspection, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin inspection update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	current, err := r.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(current); err != nil {
		return nil, err
	}

	row := rowFromModel(current)
	query := tx.Rebind(`UPDATE inspections SET status = ?, updated_at = ?, admin_response = ?, admin_id = ?,
feedback_rating = ?, feedback_comment = ?, feedback_created_at = ? WHERE id = ?`)
	if _, err := tx.ExecContext(ctx, query, row.Status, row.UpdatedAt, row.AdminResponse, row.AdminID,
		row.FeedbackRating, row.FeedbackComment, row.FeedbackCreatedAt, row.ID); err != nil {
		return nil, fmt.Errorf("update inspection: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit inspection update: %w", err)
	}
	return current, nil
}

// Count returns the number of stored inspections.
func (r *InspectionRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM inspections`); err != nil {
		return 0, fmt.Errorf("count inspections: %w", err)
	}
	return total, nil
}

func (r *InspectionRepository) get(ctx context.Context, q sqlx.QueryerContext, id string) (*models.Inspection, error) {
	var row inspectionRow
	query := r.db.Rebind(`SELECT ` + inspectionColumns + ` FROM inspections WHERE id = ?`)
	if err := sqlx.GetContext(ctx, q, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get inspection: %w", err)
	}
	out := row.toModel()
	return &out, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
