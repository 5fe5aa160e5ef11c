package dto

import "github.com/noah-isme/eufiscalizo-api/internal/models"

// CreateInspectionRequest is the payload a student submits to report a problem.
type CreateInspectionRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"required"`
	Category    string  `json:"category" validate:"required,category"`
	Location    string  `json:"location" validate:"required,max=200"`
	MediaURL    *string `json:"mediaUrl,omitempty" validate:"omitempty,url"`
}

// Form converts the request into the registry form.
func (r CreateInspectionRequest) Form() models.InspectionForm {
	return models.InspectionForm{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Location:    r.Location,
		MediaURL:    r.MediaURL,
	}
}

// AdvanceStatusRequest moves an inspection to its next stage.
type AdvanceStatusRequest struct {
	Status        models.InspectionStatus `json:"status" validate:"required,inspection_status"`
	AdminResponse *string                 `json:"adminResponse,omitempty"`
}

// FeedbackRequest rates a resolved inspection.
type FeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// InspectionQuery collects list filters from the query string.
type InspectionQuery struct {
	Search    string `form:"search"`
	Category  string `form:"category"`
	Status    string `form:"status"`
	StudentID string `form:"studentId"`
}

// Filter converts the query into a view filter.
func (q InspectionQuery) Filter() models.InspectionFilter {
	return models.InspectionFilter{
		StudentID: q.StudentID,
		Search:    q.Search,
		Category:  q.Category,
		Status:    q.Status,
	}
}

// InspectionDetail wraps a record with the actions the caller may take on it.
type InspectionDetail struct {
	models.Inspection
	AllowedActions []string `json:"allowedActions"`
	RatingLabel    string   `json:"ratingLabel,omitempty"`
}

// ExportFormat selects the export renderer.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportResult is a rendered export ready to stream.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}
