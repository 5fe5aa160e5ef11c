package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/eufiscalizo-api/internal/models"
)

func viewFixtures() []models.Inspection {
	return []models.Inspection{
		{ID: "a", StudentID: "1", StudentName: "João Silva", Title: "Goteira", Description: "Teto pingando", Category: "Infraestrutura", Location: "Sala 205", Status: models.StatusInProgress},
		{ID: "b", StudentID: "2", StudentName: "Maria", Title: "Lâmpada", Description: "Queimada", Category: "Iluminação", Location: "Corredor", Status: models.StatusReceived},
		{ID: "c", StudentID: "1", StudentName: "João Silva", Title: "Cadeiras", Description: "Quebradas", Category: "Mobiliário", Location: "Sala 102", Status: models.StatusResolved, Feedback: &models.Feedback{Rating: 4}},
		{ID: "d", StudentID: "2", StudentName: "Maria", Title: "Mesa", Description: "Bamba", Category: "Mobiliário", Location: "Biblioteca", Status: models.StatusResolved, Feedback: &models.Feedback{Rating: 1}},
	}
}

func ids(list []models.Inspection) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, item.ID)
	}
	return out
}

func TestCountByStatusSumsToTotal(t *testing.T) {
	stats := CountByStatus(viewFixtures())
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Received)
	assert.Equal(t, 1, stats.InProgress)
	assert.Equal(t, 2, stats.Resolved)
	assert.Equal(t, stats.Total, stats.Received+stats.InProgress+stats.Resolved)

	empty := CountByStatus(nil)
	assert.Equal(t, models.InspectionStats{}, empty)
}

func TestForStudent(t *testing.T) {
	assert.Equal(t, []string{"a", "c"}, ids(ForStudent(viewFixtures(), "1")))
	assert.Empty(t, ForStudent(viewFixtures(), "404"))
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	list := viewFixtures()
	assert.Equal(t, []string{"a"}, ids(Search(list, "GOTEIRA")))
	assert.Equal(t, []string{"b", "d"}, ids(Search(list, "maria")))
	assert.Equal(t, []string{"c"}, ids(Search(list, "sala 102")))
	assert.Equal(t, []string{"d"}, ids(Search(list, "bamba")))
	assert.Len(t, Search(list, "  "), 4)
}

func TestFilters(t *testing.T) {
	list := viewFixtures()
	assert.Equal(t, []string{"c", "d"}, ids(FilterByCategory(list, "Mobiliário")))
	assert.Len(t, FilterByCategory(list, "all"), 4)
	assert.Len(t, FilterByCategory(list, ""), 4)
	assert.Equal(t, []string{"b"}, ids(FilterByStatus(list, "recebida")))
	assert.Len(t, FilterByStatus(list, "all"), 4)
}

func TestCategoriesFirstSeenOrder(t *testing.T) {
	assert.Equal(t, []string{"Infraestrutura", "Iluminação", "Mobiliário"}, Categories(viewFixtures()))
	assert.Empty(t, Categories(nil))
}

func TestApplyCombinesFilters(t *testing.T) {
	out := Apply(viewFixtures(), models.InspectionFilter{StudentID: "1", Category: "Mobiliário", Status: "concluida"})
	assert.Equal(t, []string{"c"}, ids(out))

	out = Apply(viewFixtures(), models.InspectionFilter{Search: "sala", Status: "all"})
	assert.Equal(t, []string{"a", "c"}, ids(out))
}

func TestAverageRating(t *testing.T) {
	assert.InDelta(t, 2.5, AverageRating(viewFixtures()), 0.0001)
	assert.Zero(t, AverageRating(viewFixtures()[:2]))
}
