package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"iga-community/internal/model"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	return db, mock
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	user := &model.User{FirstName: "Ada", LastName: "L", Email: "ada@example.org"}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, uint(7), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.User{Email: "ada@example.org"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	user, err := repo.GetByEmail(context.Background(), "nobody@example.org")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_GetByEmailFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "first_name"}).AddRow(3, "ada@example.org", "Ada"))

	user, err := repo.GetByEmail(context.Background(), "ada@example.org")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, uint(3), user.ID)
	assert.Equal(t, "Ada", user.FirstName)
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, err := repo.UpdatePassword(context.Background(), "ada@example.org", "h", "s")
	require.NoError(t, err)
	assert.True(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `events`").WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	signup := &model.EventSignup{EventName: "Tea Party", UserEmail: "ada@example.org"}
	require.NoError(t, repo.Create(context.Background(), signup))
	assert.Equal(t, uint(11), signup.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
