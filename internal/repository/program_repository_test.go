package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/health-program-api/internal/models"
)

var programRowColumns = []string{"id", "name", "description", "created_at", "updated_at"}

func TestListPrograms(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + programColumns + " FROM programs ORDER BY name ASC, id DESC LIMIT 10 OFFSET 10")).
		WillReturnRows(sqlmock.NewRows(programRowColumns).AddRow("p1", "TB Program", "desc", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM programs")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	programs, total, err := repo.List(context.Background(), models.ProgramFilter{Ordering: "name", Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, programs, 1)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProgramsEmptyIsNotNil(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectQuery("FROM programs ORDER BY created_at DESC, id DESC").WillReturnRows(sqlmock.NewRows(programRowColumns))
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	programs, total, err := repo.List(context.Background(), models.ProgramFilter{})
	require.NoError(t, err)
	assert.NotNil(t, programs)
	assert.Zero(t, total)
}

func TestCreateProgram(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectExec("INSERT INTO programs").WillReturnResult(sqlmock.NewResult(1, 1))

	program := &models.Program{Name: "TB Program", Description: "Tuberculosis care"}
	require.NoError(t, repo.Create(context.Background(), program))
	assert.NotEmpty(t, program.ID)
	assert.Equal(t, program.CreatedAt, program.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProgramMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectExec("UPDATE programs SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Program{ID: "p1", Name: "x", Description: "y"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDeleteProgram(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM programs WHERE id = $1")).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM programs WHERE id = $1")).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "p1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "p1"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
