package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dan9191/auth-service/internal/common"
	"github.com/Dan9191/auth-service/internal/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertUserQuery = `(?s)^\s*INSERT\s+INTO\s+users\s*\(username,\s*password,\s*admin\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at\s*$`
	selectByName    = `(?s)^\s*SELECT\s+id,\s*username,\s*password,\s*admin,\s*created_at\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s*$`
	selectByID      = `(?s)^\s*SELECT\s+id,\s*username,\s*password,\s*admin,\s*created_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	updateAdmin     = `^UPDATE\s+users\s+SET\s+admin\s*=\s*\$1\s+WHERE\s+username\s*=\s*\$2$`
)

var userColumns = []string{"id", "username", "password", "admin", "created_at"}

func newRepoWithMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestCreateUser_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(insertUserQuery).
		WithArgs("michael", "$2a$hash", false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))

	u := &models.User{Username: "michael", PasswordHash: "$2a$hash"}
	require.NoError(t, repo.CreateUser(context.Background(), u))

	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, now, u.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_Duplicate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertUserQuery).
		WithArgs("michael", "$2a$hash", false).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	err := repo.CreateUser(context.Background(), &models.User{Username: "michael", PasswordHash: "$2a$hash"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestCreateUser_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertUserQuery).
		WillReturnError(errors.New("db down"))

	err := repo.CreateUser(context.Background(), &models.User{Username: "michael", PasswordHash: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create user")
	assert.Contains(t, err.Error(), "db down")
}

func TestFindUserByUsername_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(selectByName).
		WithArgs("michael").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(1), "michael", "hash", true, now))

	u, err := repo.FindUserByUsername(context.Background(), "michael")
	require.NoError(t, err)
	assert.Equal(t, &models.User{ID: 1, Username: "michael", PasswordHash: "hash", Admin: true, CreatedAt: now}, u)
}

func TestFindUserByUsername_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectByName).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindUserByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestFindUserByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(selectByID).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(3), "jeremy", "hash", false, now))

	u, err := repo.FindUserByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "jeremy", u.Username)
	assert.False(t, u.Admin)
}

func TestFindUserByID_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectByID).
		WithArgs(int64(3)).
		WillReturnError(errors.New("timeout"))

	_, err := repo.FindUserByID(context.Background(), 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrNotFound)
	assert.Contains(t, err.Error(), "failed to find user")
}

func TestSetAdmin(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(updateAdmin).
		WithArgs(true, "michael").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(updateAdmin).
		WithArgs(true, "nobody").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.SetAdmin(context.Background(), "michael", true))
	assert.ErrorIs(t, repo.SetAdmin(context.Background(), "nobody", true), common.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
