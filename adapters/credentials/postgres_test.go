package credentials

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/layer-3/trustgate/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStore(db), mock
}

func TestPostgresCreate(t *testing.T) {
	ctx := context.Background()
	s, mock := newPostgresStore(t)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectExec("select pg_advisory_xact_lock").WithArgs(createLockKey).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("insert into users").
		WithArgs(sqlmock.AnyArg(), "alice@x.com", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"role", "created_at"}).AddRow("admin", now))
	mock.ExpectCommit()

	identity, err := s.Create(ctx, "alice@x.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, core.RoleAdmin, identity.Role)
	assert.Equal(t, "alice@x.com", identity.Email)
	assert.NotEmpty(t, identity.ID)
	assert.Equal(t, now, identity.CreatedAt)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	s, mock := newPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("select pg_advisory_xact_lock").WithArgs(createLockKey).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("insert into users").
		WithArgs(sqlmock.AnyArg(), "alice@x.com", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	mock.ExpectRollback()

	_, err := s.Create(ctx, "alice@x.com", "hash")
	assert.ErrorIs(t, err, core.ErrDuplicateEmail)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindByEmail(t *testing.T) {
	ctx := context.Background()
	s, mock := newPostgresStore(t)

	now := time.Now()
	mock.ExpectQuery("select id, email, password_hash, role, created_at from users where email").
		WithArgs("alice@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "created_at"}).
			AddRow("6f1c8e7a-0000-4000-8000-000000000001", "alice@x.com", "hash", "admin", now))
	mock.ExpectQuery("select id, email, password_hash, role, created_at from users where email").
		WithArgs("nobody@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "created_at"}))

	identity, err := s.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, core.RoleAdmin, identity.Role)
	assert.Equal(t, "hash", identity.PasswordHash)

	_, err = s.FindByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, core.ErrUserNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindByIDRejectsMalformedID(t *testing.T) {
	s, mock := newPostgresStore(t)

	_, err := s.FindByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, core.ErrUserNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindByIDStorageError(t *testing.T) {
	s, mock := newPostgresStore(t)

	mock.ExpectQuery("from users where id").WillReturnError(errors.New("connection refused"))

	_, err := s.FindByID(context.Background(), "6f1c8e7a-0000-4000-8000-000000000001")
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrUserNotFound)
}

func TestPostgresListUsers(t *testing.T) {
	ctx := context.Background()
	s, mock := newPostgresStore(t)

	now := time.Now()
	filter := core.UserFilter{Search: "50%_off", Offset: 10, Limit: 10}

	mock.ExpectQuery("select count").
		WithArgs("50%_off", `%50\%\_off%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery("left join kyc_submissions").
		WithArgs("50%_off", `%50\%\_off%`, 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role", "created_at", "status", "image_url", "video_url"}).
			AddRow("6f1c8e7a-0000-4000-8000-000000000002", "50%_off@x.com", "user", now, "not_submitted", "", ""))

	total, err := s.CountUsers(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 11, total)

	users, err := s.ListUsers(ctx, filter)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, core.KYCNotSubmitted, users[0].KYCStatus)
	assert.Equal(t, core.RoleUser, users[0].Role)

	require.NoError(t, mock.ExpectationsWereMet())
}
