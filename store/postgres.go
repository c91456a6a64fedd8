package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	pgquery "github.com/pganalyze/pg_query_go/v2"

	"github.com/mtgsearch/mtgsearch/fields"
	"github.com/mtgsearch/mtgsearch/plan"
)

// PostgresBackend renders and executes a Plan against Postgres.
type PostgresBackend struct {
	db *sql.DB
}

func NewPostgresBackend(dsn string) (*PostgresBackend, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &PostgresBackend{db: db}, nil
}

// ValidatePredicateSQL parses a predicate SQL fragment using $N
// placeholders, wrapped in a throwaway SELECT, to catch a malformed
// predicate before it
// reaches a live connection. Grounded on database/postgres/parser.go's use
// of pg_query_go to parse SQL fragments rather than send them blind.
func ValidatePredicateSQL(predicateSQL string) error {
	probe := fmt.Sprintf("SELECT 1 WHERE %s", predicateSQL)
	if _, err := pgquery.Parse(probe); err != nil {
		return fmt.Errorf("predicate_sql failed to parse as postgres SQL: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Execute(ctx context.Context, p *plan.Plan, table string) ([]Row, error) {
	// :pN is not Postgres syntax, so the predicate is validated with its
	// placeholders already rewritten to $N.
	if err := ValidatePredicateSQL(paramPlaceholder.ReplaceAllString(p.PredicateSQL, "$$$1")); err != nil {
		return nil, err
	}
	query, params := BuildQuery(p, table, PlaceholderDollar)
	args := make([]any, len(params))
	for i, param := range params {
		args[i] = postgresArg(param.Value)
	}
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres query: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

func (b *PostgresBackend) Close() error { return b.db.Close() }

// postgresArg converts a fields.Value into a lib/pq-compatible driver
// value, using pq.Array for the two multi-valued Kinds so they bind as a
// native Postgres array rather than a flattened string.
func postgresArg(v fields.Value) any {
	switch v.Kind {
	case fields.KindInt:
		return v.Int
	case fields.KindFloat:
		return v.Float
	case fields.KindBool:
		return v.Bool
	case fields.KindStringArray:
		return pq.Array(v.Strs)
	case fields.KindColorSet:
		return pq.Array(v.Colors.Letters())
	default:
		return v.Str
	}
}
