package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/layer-3/trustgate/adapters/postgres"
	"github.com/layer-3/trustgate/core"
	"github.com/layer-3/trustgate/ports"
)

// createLockKey serializes identity creation so that exactly one identity
// observes an empty table and becomes admin.
const createLockKey int64 = 0x7472757374 // "trust"

// PostgresStore implements CredentialStore on the users table
type PostgresStore struct {
	db *sql.DB
}

var _ ports.CredentialStore = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts the identity inside a transaction holding an advisory lock.
// The unique index on email turns a concurrent duplicate into ErrDuplicateEmail.
func (s *PostgresStore) Create(ctx context.Context, email, passwordHash string) (*core.Identity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("credentials: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `select pg_advisory_xact_lock($1)`, createLockKey); err != nil {
		return nil, fmt.Errorf("credentials: lock: %w", err)
	}

	identity := &core.Identity{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
	}
	err = tx.QueryRowContext(ctx,
		`insert into users (id, email, password_hash, role)
		 select $1, $2, $3, case when exists (select 1 from users) then 'user' else 'admin' end
		 returning role, created_at`,
		identity.ID, email, passwordHash,
	).Scan(&identity.Role, &identity.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, core.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("credentials: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("credentials: commit: %w", err)
	}
	return identity, nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*core.Identity, error) {
	return s.findOne(ctx, `select id, email, password_hash, role, created_at from users where email = $1`, email)
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*core.Identity, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, core.ErrUserNotFound
	}
	return s.findOne(ctx, `select id, email, password_hash, role, created_at from users where id = $1`, id)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg string) (*core.Identity, error) {
	var identity core.Identity
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&identity.ID, &identity.Email, &identity.PasswordHash, &identity.Role, &identity.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("credentials: find: %w", err)
	}
	return &identity, nil
}

func (s *PostgresStore) CountUsers(ctx context.Context, filter core.UserFilter) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`select count(*) from users u where u.role = 'user' and ($1 = '' or u.email ilike $2)`,
		filter.Search, likePattern(filter.Search),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("credentials: count: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context, filter core.UserFilter) ([]core.UserSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`select u.id, u.email, u.role, u.created_at,
		        coalesce(k.status, 'not_submitted'), coalesce(k.image_url, ''), coalesce(k.video_url, '')
		 from users u
		 left join kyc_submissions k on k.user_id = u.id
		 where u.role = 'user' and ($1 = '' or u.email ilike $2)
		 order by u.created_at desc
		 limit $3 offset $4`,
		filter.Search, likePattern(filter.Search), filter.Limit, filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("credentials: list: %w", err)
	}
	defer rows.Close()

	users := []core.UserSummary{}
	for rows.Next() {
		var u core.UserSummary
		if err := rows.Scan(&u.ID, &u.Email, &u.Role, &u.JoinedAt, &u.KYCStatus, &u.KYCImage, &u.KYCVideo); err != nil {
			return nil, fmt.Errorf("credentials: scan: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}
