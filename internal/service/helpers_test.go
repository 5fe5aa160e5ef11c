package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eufiscalizo-api/internal/fixtures"
	"github.com/noah-isme/eufiscalizo-api/internal/models"
	"github.com/noah-isme/eufiscalizo-api/internal/repository"
)

var (
	studentActor = models.Actor{ID: "1", Name: "João Silva", Role: models.RoleStudent}
	otherStudent = models.Actor{ID: "99", Name: "Maria Souza", Role: models.RoleStudent}
	adminActor   = models.Actor{ID: "2", Name: "Admin Sistema", Role: models.RoleAdmin}
)

func loadFixtures(t *testing.T) *fixtures.Set {
	t.Helper()
	set, err := fixtures.Default()
	require.NoError(t, err)
	return set
}

func newFixtureRegistry(t *testing.T) *InspectionRegistry {
	t.Helper()
	set := loadFixtures(t)
	return NewInspectionRegistry(repository.NewMemoryInspectionRepository(set.Inspections), nil)
}

func strPtr(s string) *string {
	return &s
}
