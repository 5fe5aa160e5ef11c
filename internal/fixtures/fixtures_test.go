package fixtures

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eufiscalizo-api/internal/models"
)

func TestDefaultFixtures(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	require.Len(t, set.Users, 2)
	assert.Equal(t, models.RoleStudent, set.Users[0].Role)
	assert.Equal(t, "admin@univ.br", set.Users[1].Email)

	require.Len(t, set.Inspections, 3)
	seen := map[models.InspectionStatus]bool{}
	for i, in := range set.Inspections {
		seen[in.Status] = true
		if i > 0 {
			assert.False(t, in.CreatedAt.After(set.Inspections[i-1].CreatedAt), "fixtures must be newest first")
		}
	}
	assert.Len(t, seen, 3)
	require.NotNil(t, set.Inspections[2].Feedback)
	assert.Equal(t, 5, set.Inspections[2].Feedback.Rating)
}

func TestDecodeRejectsFeedbackBeforeResolution(t *testing.T) {
	_, err := Decode(strings.NewReader(`
inspections:
  - id: "9"
    studentId: "1"
    status: recebida
    feedback:
      rating: 3
      comment: early
`))
	require.Error(t, err)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("users:\n  - id: x\n    email: a@b\n    role: student\n    nickname: y\n"))
	require.Error(t, err)
}
