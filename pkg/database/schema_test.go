package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatementsCoverTables(t *testing.T) {
	joined := strings.Join(Statements(), "\n")
	for _, table := range []string{"users", "refresh_tokens", "audit_logs", "programs", "clients", "enrollments"} {
		assert.Contains(t, joined, "CREATE TABLE IF NOT EXISTS "+table+" ")
	}
	assert.Contains(t, joined, "UNIQUE (client_id, program_id)")
	assert.Contains(t, joined, "REFERENCES clients(id) ON DELETE CASCADE")
}

func TestApplySchemaExecutesAllStatements(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	for range Statements() {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	require.NoError(t, ApplySchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplySchemaRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(".*").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err = ApplySchema(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statement 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}
