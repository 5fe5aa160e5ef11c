package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eufiscalizo-api/internal/fixtures"
	"github.com/noah-isme/eufiscalizo-api/internal/models"
	"github.com/noah-isme/eufiscalizo-api/internal/repository"
	"github.com/noah-isme/eufiscalizo-api/internal/service"
	appErrors "github.com/noah-isme/eufiscalizo-api/pkg/errors"
	"github.com/noah-isme/eufiscalizo-api/pkg/storage"
)

type harness struct {
	dir         string
	users       *repository.MemoryUserRepository
	inspections *repository.MemoryInspectionRepository
	out         *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	set, err := fixtures.Default()
	require.NoError(t, err)
	return &harness{
		dir:         t.TempDir(),
		users:       repository.NewMemoryUserRepository(set.Users),
		inspections: repository.NewMemoryInspectionRepository(set.Inspections),
		out:         &bytes.Buffer{},
	}
}

// run builds a fresh App per invocation so the session must round trip through disk.
func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	local, err := storage.NewLocalStorage(filepath.Join(h.dir, "session"))
	require.NoError(t, err)
	verifier := service.CredentialVerifierFunc(func(_ *models.User, pw string) bool { return pw == "123456" })
	identity := service.NewIdentityStore(h.users, repository.NewFileSessionRepository(local), verifier, nil)
	registry := service.NewInspectionRegistry(h.inspections, nil)
	svc := service.NewInspectionService(registry, nil, nil, nil)

	h.out.Reset()
	return New(identity, svc, h.out).Run(context.Background(), args)
}

func TestRunWithoutCommandPrintsUsage(t *testing.T) {
	h := newHarness(t)
	err := h.run(t)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, h.out.String(), "usage: fiscalizo")

	err = h.run(t, "bogus")
	assert.ErrorIs(t, err, ErrUsage)
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	h := newHarness(t)

	err := h.run(t, "login", "-email", "joao@student.univ.br", "-password", "wrong")
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	require.NoError(t, h.run(t, "login", "-email", "joao@student.univ.br", "-password", "123456"))
	assert.Contains(t, h.out.String(), "signed in as")

	require.NoError(t, h.run(t, "whoami"))
	assert.Contains(t, h.out.String(), "joao@student.univ.br")

	require.NoError(t, h.run(t, "logout"))
	require.NoError(t, h.run(t, "whoami"))
	assert.Contains(t, h.out.String(), "not signed in")
}

func TestCommandsRequireSession(t *testing.T) {
	h := newHarness(t)
	err := h.run(t, "list")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestStudentReportsAndAdminResolves(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, "login", "-email", "joao@student.univ.br", "-password", "123456"))
	require.NoError(t, h.run(t, "report",
		"-title", "Projetor queimado",
		"-description", "O projetor da sala 12 não liga",
		"-category", "Tecnologia",
		"-location", "Bloco B, sala 12"))
	assert.Contains(t, h.out.String(), "Recebida")

	items, err := h.inspections.List(context.Background())
	require.NoError(t, err)
	created := items[0]
	assert.Equal(t, "Projetor queimado", created.Title)

	err = h.run(t, "advance", "-id", created.ID)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	require.NoError(t, h.run(t, "login", "-email", "admin@univ.br", "-password", "123456"))
	require.NoError(t, h.run(t, "advance", "-id", created.ID))
	assert.Contains(t, h.out.String(), "Em Processo")
	require.NoError(t, h.run(t, "advance", "-id", created.ID, "-response", "Projetor substituído"))
	assert.Contains(t, h.out.String(), "Concluída")

	err = h.run(t, "advance", "-id", created.ID)
	assert.ErrorIs(t, err, appErrors.ErrIllegalTransition)

	require.NoError(t, h.run(t, "login", "-email", "joao@student.univ.br", "-password", "123456"))
	require.NoError(t, h.run(t, "feedback", "-id", created.ID, "-rating", "4", "-comment", "Rápido"))
	assert.Contains(t, h.out.String(), "Satisfeito")

	err = h.run(t, "feedback", "-id", created.ID, "-rating", "5")
	assert.ErrorIs(t, err, appErrors.ErrFeedbackExists)

	require.NoError(t, h.run(t, "show", "-id", created.ID))
	assert.Contains(t, h.out.String(), "Projetor substituído")
	assert.Contains(t, h.out.String(), "rating:")
}

func TestListAndStatsForStudent(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, "login", "-email", "joao@student.univ.br", "-password", "123456"))

	require.NoError(t, h.run(t, "list", "-status", "concluida"))
	assert.Contains(t, h.out.String(), "Concluída")
	assert.NotContains(t, h.out.String(), "Recebida")

	require.NoError(t, h.run(t, "stats"))
	assert.Contains(t, h.out.String(), "total:")

	require.NoError(t, h.run(t, "list", "-search", "nothing-matches-this"))
	assert.Contains(t, h.out.String(), "no inspections found")
}

func TestRegisterSignsIn(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, "register", "-name", "Maria", "-email", "maria@student.univ.br", "-matricula", "2024002"))
	assert.Contains(t, h.out.String(), "registered Maria (student)")

	require.NoError(t, h.run(t, "whoami"))
	assert.Contains(t, h.out.String(), "maria@student.univ.br")

	err := h.run(t, "register", "-name", "X", "-email", "x@univ.br", "-role", "guest")
	assert.ErrorIs(t, err, ErrUsage)
}

func TestUsersAndExportAreAdminOnly(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, "login", "-email", "joao@student.univ.br", "-password", "123456"))
	assert.ErrorIs(t, h.run(t, "users"), appErrors.ErrForbidden)

	require.NoError(t, h.run(t, "login", "-email", "admin@univ.br", "-password", "123456"))
	require.NoError(t, h.run(t, "users"))
	assert.Contains(t, h.out.String(), "admin@univ.br")

	path := filepath.Join(h.dir, "out.csv")
	require.NoError(t, h.run(t, "export", "-out", path))
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "id,title,category,location,status,student,created_at,rating")
}
