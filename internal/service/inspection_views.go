package service

import (
	"strings"

	"github.com/noah-isme/eufiscalizo-api/internal/models"
)

// filterAll is the sentinel accepted by category and status filters.
const filterAll = "all"

// ForStudent keeps the inspections owned by studentID.
func ForStudent(list []models.Inspection, studentID string) []models.Inspection {
	out := make([]models.Inspection, 0, len(list))
	for _, item := range list {
		if item.StudentID == studentID {
			out = append(out, item)
		}
	}
	return out
}

// CountByStatus tallies the collection per status.
func CountByStatus(list []models.Inspection) models.InspectionStats {
	stats := models.InspectionStats{Total: len(list)}
	for _, item := range list {
		switch item.Status {
		case models.StatusReceived:
			stats.Received++
		case models.StatusInProgress:
			stats.InProgress++
		case models.StatusResolved:
			stats.Resolved++
		}
	}
	return stats
}

// Search matches term case-insensitively against title, description, student name and
// location. An empty term matches everything.
func Search(list []models.Inspection, term string) []models.Inspection {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return list
	}
	out := make([]models.Inspection, 0, len(list))
	for _, item := range list {
		if strings.Contains(strings.ToLower(item.Title), term) ||
			strings.Contains(strings.ToLower(item.Description), term) ||
			strings.Contains(strings.ToLower(item.StudentName), term) ||
			strings.Contains(strings.ToLower(item.Location), term) {
			out = append(out, item)
		}
	}
	return out
}

// FilterByCategory keeps one category. "" and "all" disable the filter.
func FilterByCategory(list []models.Inspection, category string) []models.Inspection {
	if category == "" || category == filterAll {
		return list
	}
	out := make([]models.Inspection, 0, len(list))
	for _, item := range list {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out
}

// FilterByStatus keeps one status. "" and "all" disable the filter.
func FilterByStatus(list []models.Inspection, status string) []models.Inspection {
	if status == "" || status == filterAll {
		return list
	}
	out := make([]models.Inspection, 0, len(list))
	for _, item := range list {
		if string(item.Status) == status {
			out = append(out, item)
		}
	}
	return out
}

// Categories returns the distinct categories in first-seen order.
func Categories(list []models.Inspection) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0)
	for _, item := range list {
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		out = append(out, item.Category)
	}
	return out
}

// Apply runs every filter in the given order: owner, search, category, status.
func Apply(list []models.Inspection, filter models.InspectionFilter) []models.Inspection {
	if filter.StudentID != "" {
		list = ForStudent(list, filter.StudentID)
	}
	list = Search(list, filter.Search)
	list = FilterByCategory(list, filter.Category)
	return FilterByStatus(list, filter.Status)
}

// AverageRating is the mean feedback rating, or 0 when nothing has been rated.
func AverageRating(list []models.Inspection) float64 {
	var sum, count int
	for _, item := range list {
		if item.Feedback != nil {
			sum += item.Feedback.Rating
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}
