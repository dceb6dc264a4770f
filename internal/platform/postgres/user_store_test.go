package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Thinkabouthev/backend-hw2/internal/domain"
	"github.com/Thinkabouthev/backend-hw2/internal/platform/postgres"
	"github.com/Thinkabouthev/backend-hw2/internal/store"
)

func newUserStore(t *testing.T) (*postgres.PostgresUserStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return postgres.NewPostgresUserStore(db, bcrypt.MinCost), mock
}

func userColumns() []string {
	return []string{"id", "email", "hashed_password", "created_at", "updated_at"}
}

func TestUserStoreCreate(t *testing.T) {
	t.Run("hashes password and inserts", func(t *testing.T) {
		s, mock := newUserStore(t)

		user, err := domain.NewUser("alice@example.com", "password1234")
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(user.ID, user.Email, sqlmock.AnyArg(), user.CreatedAt, user.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), user))
		assert.NoError(t, mock.ExpectationsWereMet())

		// The plaintext never survives Create; the stored hash verifies.
		assert.Empty(t, user.Password)
		assert.NoError(t,
			bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("password1234")))
	})

	t.Run("duplicate email maps to ErrEmailExists", func(t *testing.T) {
		s, mock := newUserStore(t)

		user, err := domain.NewUser("alice@example.com", "password1234")
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		err = s.Create(context.Background(), user)
		assert.ErrorIs(t, err, store.ErrEmailExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid user rejected before touching the database", func(t *testing.T) {
		s, _ := newUserStore(t)

		user := &domain.User{ID: uuid.New(), Email: "", Password: "password1234"}
		assert.ErrorIs(t, s.Create(context.Background(), user), domain.ErrEmptyEmail)
	})
}

func TestUserStoreGetByID(t *testing.T) {
	s, mock := newUserStore(t)
	id := uuid.New()
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, hashed_password, created_at, updated_at")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(userColumns()).
				AddRow(id.String(), "alice@example.com", "$2a$hash", now, now))

		user, err := s.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "$2a$hash", user.HashedPassword)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, hashed_password, created_at, updated_at")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(userColumns()))

		_, err := s.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreGetByEmail(t *testing.T) {
	s, mock := newUserStore(t)
	id := uuid.New()
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1")).
			WithArgs("alice@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns()).
				AddRow(id.String(), "alice@example.com", "$2a$hash", now, now))

		user, err := s.GetByEmail(context.Background(), "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1")).
			WithArgs("ghost@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns()))

		_, err := s.GetByEmail(context.Background(), "ghost@example.com")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
