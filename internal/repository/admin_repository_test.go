package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRepositoryFindByUsername(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	cols := []string{"id", "username", "password_hash", "created_at"}
	mock.ExpectQuery("FROM admin_users WHERE username").WithArgs("root").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, "root", "$2a$10$hash", time.Now()))
	mock.ExpectQuery("FROM admin_users WHERE username").WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(cols))

	admin, err := repo.FindByUsername(context.Background(), "root")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$hash", admin.PasswordHash)

	_, err = repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
