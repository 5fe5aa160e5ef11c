package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eufiscalizo-api/internal/models"
)

var inspectionColumnNames = []string{
	"id", "student_id", "student_name", "title", "description", "category", "location", "status", "media_url",
	"created_at", "updated_at", "admin_response", "admin_id", "feedback_rating", "feedback_comment", "feedback_created_at",
}

func TestInspectionRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInspectionRepository(db)

	now := time.Date(2024, 1, 18, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(inspectionColumnNames).
		AddRow("3", "1", "João Silva", "Lâmpada queimada", "Corredor escuro", "Iluminação", "Bloco B", "recebida", nil,
			now, now, nil, nil, nil, nil, nil).
		AddRow("2", "1", "João Silva", "Vazamento", "Pia", "Infraestrutura", "Banheiro", "concluida", nil,
			now.Add(-time.Hour), now, "Resolvido", "2", 5, "Ótimo", now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM inspections ORDER BY created_at DESC, id DESC")).WillReturnRows(rows)

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.StatusReceived, items[0].Status)
	assert.Nil(t, items[0].Feedback)
	require.NotNil(t, items[1].Feedback)
	assert.Equal(t, 5, items[1].Feedback.Rating)
	require.NotNil(t, items[1].AdminID)
	assert.Equal(t, "2", *items[1].AdminID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInspectionRepositoryGetNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInspectionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM inspections WHERE id = ?")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(inspectionColumnNames))

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInspectionRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInspectionRepository(db)

	mock.ExpectExec("INSERT INTO inspections").WillReturnResult(sqlmock.NewResult(1, 1))

	now := time.Now().UTC()
	err := repo.Insert(context.Background(), &models.Inspection{
		ID: "x", StudentID: "1", StudentName: "João", Title: "t", Description: "d", Category: "Outros",
		Location: "l", Status: models.StatusReceived, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInspectionRepositoryUpdateWhere(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInspectionRepository(db)

	created := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM inspections WHERE id = ?")).
		WithArgs("1").
		WillReturnRows(sqlmock.NewRows(inspectionColumnNames).
			AddRow("1", "1", "João Silva", "Ar", "Quebrado", "Climatização", "Sala 101", "recebida", nil,
				created, created, nil, nil, nil, nil, nil))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE inspections SET status = ?")).
		WithArgs("em_processo", sqlmock.AnyArg(), "ok", "2", nil, nil, nil, "1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, err := repo.UpdateWhere(context.Background(), "1", func(in *models.Inspection) error {
		in.Status = models.StatusInProgress
		in.UpdatedAt = time.Now().UTC()
		resp, admin := "ok", "2"
		in.AdminResponse = &resp
		in.AdminID = &admin
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInspectionRepositoryUpdateWhereRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInspectionRepository(db)

	created := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM inspections WHERE id = ?")).
		WithArgs("1").
		WillReturnRows(sqlmock.NewRows(inspectionColumnNames).
			AddRow("1", "1", "João Silva", "Ar", "Quebrado", "Climatização", "Sala 101", "recebida", nil,
				created, created, nil, nil, nil, nil, nil))
	mock.ExpectRollback()

	boom := errors.New("rejected")
	_, err := repo.UpdateWhere(context.Background(), "1", func(*models.Inspection) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
