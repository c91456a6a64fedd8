package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/mtgsearch/mtgsearch/fields"
	"github.com/mtgsearch/mtgsearch/plan"
)

// SQLiteBackend renders and executes a Plan against SQLite, using the
// pure-Go modernc.org/sqlite driver (no cgo), the way
// database/sqlite3/database.go sources its driver.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Execute(ctx context.Context, p *plan.Plan, table string) ([]Row, error) {
	query, params := BuildQuery(p, table, PlaceholderQuestion)
	args := make([]any, len(params))
	for i, param := range params {
		args[i] = sqliteArg(param.Value)
	}
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite query: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

func (b *SQLiteBackend) Close() error { return b.db.Close() }

func sqliteArg(v fields.Value) any {
	switch v.Kind {
	case fields.KindInt:
		return v.Int
	case fields.KindFloat:
		return v.Float
	case fields.KindBool:
		return v.Bool
	case fields.KindStringArray:
		return strings.Join(v.Strs, ",")
	case fields.KindColorSet:
		return v.Colors.Canonical()
	default:
		return v.Str
	}
}
