package verse

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore reads verses from PostgreSQL. The pool is owned by the
// caller; this store must NOT close it.
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
			return fmt.Errorf("verse: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("verse: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
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
		return nil, fmt.Errorf("verse: nil pool")
	}
	return st, nil
}

// Count returns the number of stored verses.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	const op = "verse.Count"
	q := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table("verses"))

	var n int64
	if err := s.pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// ByOffset returns the verse at the given position in id order.
func (s *PostgresStore) ByOffset(ctx context.Context, offset int64) (Verse, error) {
	const op = "verse.ByOffset"
	if offset < 0 {
		return Verse{}, ErrOutOfRange
	}

	q := fmt.Sprintf(`
		SELECT id, sura_index, sura_title, sura_subtitle, verse_number, text
		FROM %s
		ORDER BY id ASC
		OFFSET $1 LIMIT 1`, s.table("verses"))

	var v Verse
	err := s.pool.QueryRow(ctx, q, offset).Scan(
		&v.ID, &v.SuraIndex, &v.SuraTitle, &v.SuraSubtitle, &v.VerseNumber, &v.Text,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Verse{}, ErrOutOfRange
		}
		return Verse{}, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

func (s *PostgresStore) table(name string) string {
	return fmt.Sprintf("%q.%q", s.schema, name)
}
