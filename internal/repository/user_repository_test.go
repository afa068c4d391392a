package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

const selectUserByEmail = "SELECT id,email,username,password_hash,created_at,updated_at FROM users WHERE email=? LIMIT 1"

func TestUserRepoCreateNormalizesEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users (email, username, password_hash) VALUES (?,?,?)").
		WithArgs("a@test.com", "laura", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := repo.Create(context.Background(), "  A@Test.Com ", " laura ", "secret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func TestUserRepoCreateDuplicateEmailConflicts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users (email, username, password_hash) VALUES (?,?,?)").
		WithArgs("a@test.com", "laura", sqlmock.AnyArg()).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'a@test.com' for key 'users.uq_users_email'"))

	_, err := repo.Create(context.Background(), "a@test.com", "laura", "secret", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserRepoCreateDuplicateUsernameConflicts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users (email, username, password_hash) VALUES (?,?,?)").
		WithArgs("b@test.com", "laura", sqlmock.AnyArg()).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'laura' for key 'users.uq_users_username'"))

	_, err := repo.Create(context.Background(), "b@test.com", "laura", "secret", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestUserRepoGetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(selectUserByEmail).
		WithArgs("a@test.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "username", "password_hash", "created_at", "updated_at"}).
			AddRow(1, "a@test.com", "laura", "hash", now, now))

	u, err := repo.GetByEmail(context.Background(), "A@TEST.com")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.ID)
	assert.Equal(t, "laura", u.Username)
}

func TestUserRepoGetByIDMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT id,email,username,password_hash,created_at,updated_at FROM users WHERE id=? LIMIT 1").
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
