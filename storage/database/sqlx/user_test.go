package sqlxrepos

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/nacos/core/user"
)

func TestUserRepository_CheckUsernameUniqueness(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing to check", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)
		assert.NoError(t, repo.CheckUsernameUniqueness(ctx, "", ""))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("username taken", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT username, email FROM users WHERE (username = $1 OR email = $2) LIMIT 1")).
			WithArgs("adaobi", "ada@unn.edu.ng").
			WillReturnRows(sqlmock.NewRows([]string{"username", "email"}).AddRow("adaobi", "other@unn.edu.ng"))

		assert.Equal(t, user.ErrUsernameExists, repo.CheckUsernameUniqueness(ctx, "adaobi", "ada@unn.edu.ng"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("email taken", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE (email = $1) AND id NOT IN ($2) LIMIT 1")).
			WithArgs("ada@unn.edu.ng", "6f1c2b1e-2d4a-4c38-9f8e-1a2b3c4d5e6f").
			WillReturnRows(sqlmock.NewRows([]string{"username", "email"}).AddRow(nil, "ada@unn.edu.ng"))

		err := repo.CheckUsernameUniqueness(ctx, "", "ada@unn.edu.ng", user.User{ID: "6f1c2b1e-2d4a-4c38-9f8e-1a2b3c4d5e6f"})
		assert.Equal(t, user.ErrEmailExists, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("available", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)
		mock.ExpectQuery("SELECT username, email FROM users").
			WillReturnRows(sqlmock.NewRows([]string{"username", "email"}))

		assert.NoError(t, repo.CheckUsernameUniqueness(ctx, "adaobi", ""))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetUser(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	id := uuid.New().String()
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE (username = $1 OR email = $2) LIMIT 1")).
		WithArgs("adaobi", "adaobi").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(id, "Adaobi Okafor", "adaobi", "ada@unn.edu.ng", true, []byte("{student:}"), []byte("hash"), now, now, nil))

	usr, err := repo.GetUser(ctx, user.GetFilter{UsernameOrEmail: "adaobi"})
	require.NoError(t, err)
	assert.Equal(t, id, usr.ID)
	assert.Equal(t, "adaobi", usr.Username)
	assert.Equal(t, []string{user.RoleStudent}, usr.Roles)
	assert.True(t, usr.IsActive)
	assert.True(t, usr.LastLogin.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = repo.GetUser(ctx, user.GetFilter{ID: "not-a-uuid"})
	assert.Equal(t, user.ErrNotFound, err)

	_, err = repo.GetUser(ctx, user.GetFilter{})
	assert.Equal(t, user.ErrNotFound, err)
}

func TestUserRepository_CreateUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	args := make([]driver.Value, len(userColumns))
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	mock.ExpectExec("INSERT INTO users").WithArgs(args...).WillReturnResult(sqlmock.NewResult(1, 1))

	usr, err := repo.CreateUser(context.Background(), user.User{Name: "Admin", Username: "admin", Roles: []string{user.RoleAdmin}})
	require.NoError(t, err)
	_, err = uuid.Parse(usr.ID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
