package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over PostgreSQL.
//
// Design notes:
//   - The pgx pool is owned by the caller; this store must NOT close it.
//   - Schema/table identifiers are validated and quoted to avoid SQL
//     injection via identifiers.
//   - Uniqueness of username/email is enforced by constraints on the
//     normalized columns; Save maps unique violations to ConflictError so
//     the check-then-act race in registration is arbitrated here.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the store (default "halalai").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore with secure defaults.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "halalai",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

const userColumns = "id, username, email, password_hash, enabled, created_at"

// ExistsByUsername reports whether a user with the given username exists.
func (s *PostgresStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const op = "identity.ExistsByUsername"
	q := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE username_norm = $1)`, s.table("users"))

	var exists bool
	if err := s.pool.QueryRow(ctx, q, NormalizeUsername(username)).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ExistsByEmail reports whether a user with the given email exists.
func (s *PostgresStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const op = "identity.ExistsByEmail"
	q := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE email_norm = $1)`, s.table("users"))

	var exists bool
	if err := s.pool.QueryRow(ctx, q, NormalizeEmail(email)).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// FindByUsername returns the user matching the normalized username.
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (User, error) {
	const op = "identity.FindByUsername"
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE username_norm = $1`, userColumns, s.table("users"))
	return s.findOne(ctx, op, q, NormalizeUsername(username))
}

// FindByEmail returns the user matching the normalized email.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (User, error) {
	const op = "identity.FindByEmail"
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE email_norm = $1`, userColumns, s.table("users"))
	return s.findOne(ctx, op, q, NormalizeEmail(email))
}

func (s *PostgresStore) findOne(ctx context.Context, op, q string, arg any) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx, q, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Enabled, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		return User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// Save inserts a new user (ID == 0) or updates an existing one.
// On insert the database assigns the id; the returned User carries it.
// Unique violations on username/email map to ConflictError.
func (s *PostgresStore) Save(ctx context.Context, u User) (User, error) {
	const op = "identity.Save"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if strings.TrimSpace(u.Username) == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "username is required"}
	}
	if strings.TrimSpace(u.Email) == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "email is required"}
	}
	if u.PasswordHash == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "password hash is required"}
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	if u.ID == 0 {
		q := fmt.Sprintf(`
			INSERT INTO %s (username, username_norm, email, email_norm, password_hash, enabled, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`, s.table("users"))

		err := s.pool.QueryRow(ctx, q,
			strings.TrimSpace(u.Username),
			NormalizeUsername(u.Username),
			strings.TrimSpace(u.Email),
			NormalizeEmail(u.Email),
			u.PasswordHash,
			u.Enabled,
			u.CreatedAt,
		).Scan(&u.ID)
		if err != nil {
			if field, ok := pgClassifyUniqueViolation(err); ok {
				return User{}, ConflictError{Op: op, Field: field}
			}
			return User{}, fmt.Errorf("%s: %w", op, err)
		}
		return u, nil
	}

	q := fmt.Sprintf(`
		UPDATE %s
		SET username = $2, username_norm = $3, email = $4, email_norm = $5,
		    password_hash = $6, enabled = $7
		WHERE id = $1`, s.table("users"))

	tag, err := s.pool.Exec(ctx, q,
		u.ID,
		strings.TrimSpace(u.Username),
		NormalizeUsername(u.Username),
		strings.TrimSpace(u.Email),
		NormalizeEmail(u.Email),
		u.PasswordHash,
		u.Enabled,
	)
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return User{}, ConflictError{Op: op, Field: field}
		}
		return User{}, fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	return u, nil
}

func (s *PostgresStore) table(name string) string {
	return fmt.Sprintf("%q.%q", s.schema, name)
}

func pgClassifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}

	// Prefer stable constraint names; fall back to substring matching.
	c := strings.ToLower(strings.TrimSpace(pgErr.ConstraintName))
	switch c {
	case "uq_users_username_norm":
		return "username", true
	case "uq_users_email_norm":
		return "email", true
	}
	switch {
	case strings.Contains(c, "username"):
		return "username", true
	case strings.Contains(c, "email"):
		return "email", true
	}
	return "", true
}
