package storage

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallCreatesTablesDefaultsAndDataSchema(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS units")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO units")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE SCHEMA IF NOT EXISTS "data"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, s.Install(context.Background(), "data"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstallRollsBackOnFailure(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS units")).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := s.Install(context.Background(), "data")
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsInstalled(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT to_regclass('public.entries') IS NOT NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"installed"}).AddRow(false))

	installed, err := s.IsInstalled(context.Background())
	require.NoError(t, err)
	assert.False(t, installed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
