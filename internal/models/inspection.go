package models

import "time"

// InspectionStatus tracks an inspection through its resolution lifecycle.
type InspectionStatus string

const (
	StatusReceived   InspectionStatus = "recebida"
	StatusInProgress InspectionStatus = "em_processo"
	StatusResolved   InspectionStatus = "concluida"
)

// InspectionStatuses lists every status in lifecycle order.
var InspectionStatuses = []InspectionStatus{StatusReceived, StatusInProgress, StatusResolved}

// Valid reports whether s is a known status.
func (s InspectionStatus) Valid() bool {
	switch s {
	case StatusReceived, StatusInProgress, StatusResolved:
		return true
	default:
		return false
	}
}

// NextStatus returns the only legal successor. ok is false for Resolved.
func (s InspectionStatus) NextStatus() (next InspectionStatus, ok bool) {
	switch s {
	case StatusReceived:
		return StatusInProgress, true
	case StatusInProgress:
		return StatusResolved, true
	default:
		return "", false
	}
}

// CanTransitionTo is true only for the immediate successor.
func (s InspectionStatus) CanTransitionTo(target InspectionStatus) bool {
	next, ok := s.NextStatus()
	return ok && next == target
}

// Label returns the display name used by the dashboards.
func (s InspectionStatus) Label() string {
	switch s {
	case StatusReceived:
		return "Recebida"
	case StatusInProgress:
		return "Em Processo"
	case StatusResolved:
		return "Concluída"
	default:
		return string(s)
	}
}

// Categories offered by the submission form.
var InspectionCategories = []string{
	"Infraestrutura",
	"Mobiliário",
	"Climatização",
	"Iluminação",
	"Limpeza",
	"Segurança",
	"Tecnologia",
	"Acessibilidade",
	"Outros",
}

// Feedback is the owning student's rating of a resolution.
type Feedback struct {
	Rating    int       `json:"rating" yaml:"rating"`
	Comment   string    `json:"comment" yaml:"comment"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// RatingLabel describes a 1..5 rating.
func RatingLabel(rating int) string {
	switch rating {
	case 1:
		return "Muito insatisfeito"
	case 2:
		return "Insatisfeito"
	case 3:
		return "Neutro"
	case 4:
		return "Satisfeito"
	case 5:
		return "Muito satisfeito"
	default:
		return ""
	}
}

// Inspection is a problem report submitted by a student.
type Inspection struct {
	ID            string           `json:"id" yaml:"id"`
	StudentID     string           `json:"studentId" yaml:"studentId"`
	StudentName   string           `json:"studentName" yaml:"studentName"`
	Title         string           `json:"title" yaml:"title"`
	Description   string           `json:"description" yaml:"description"`
	Category      string           `json:"category" yaml:"category"`
	Location      string           `json:"location" yaml:"location"`
	Status        InspectionStatus `json:"status" yaml:"status"`
	MediaURL      *string          `json:"mediaUrl,omitempty" yaml:"mediaUrl,omitempty"`
	CreatedAt     time.Time        `json:"createdAt" yaml:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt" yaml:"updatedAt"`
	AdminResponse *string          `json:"adminResponse,omitempty" yaml:"adminResponse,omitempty"`
	AdminID       *string          `json:"adminId,omitempty" yaml:"adminId,omitempty"`
	Feedback      *Feedback        `json:"feedback,omitempty" yaml:"feedback,omitempty"`
}

// Clone returns a deep copy of the record.
func (i *Inspection) Clone() *Inspection {
	if i == nil {
		return nil
	}
	out := *i
	out.MediaURL = cloneString(i.MediaURL)
	out.AdminResponse = cloneString(i.AdminResponse)
	out.AdminID = cloneString(i.AdminID)
	if i.Feedback != nil {
		fb := *i.Feedback
		out.Feedback = &fb
	}
	return &out
}

// InspectionForm is the data a student supplies when reporting a problem.
type InspectionForm struct {
	Title       string
	Description string
	Category    string
	Location    string
	MediaURL    *string
}

// InspectionFilter narrows a listing. Empty fields and "all" mean no filter.
type InspectionFilter struct {
	StudentID string
	Search    string
	Category  string
	Status    string
}

// InspectionStats holds per-status counts.
type InspectionStats struct {
	Total      int `json:"total"`
	Received   int `json:"recebida"`
	InProgress int `json:"em_processo"`
	Resolved   int `json:"concluida"`

	AverageRating float64 `json:"averageRating"`
}

// Action names returned by allowed-actions lookups.
const (
	ActionFeedback = "feedback"
)
