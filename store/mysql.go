package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/mtgsearch/mtgsearch/fields"
	"github.com/mtgsearch/mtgsearch/plan"
)

// MySQLBackend renders and executes a Plan against MySQL/MariaDB.
type MySQLBackend struct {
	db *sql.DB
}

func NewMySQLBackend(dsn string) (*MySQLBackend, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	return &MySQLBackend{db: db}, nil
}

func (b *MySQLBackend) Execute(ctx context.Context, p *plan.Plan, table string) ([]Row, error) {
	query, params := BuildQuery(p, table, PlaceholderQuestion)
	args := make([]any, len(params))
	for i, param := range params {
		args[i] = mysqlArg(param.Value)
	}
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("mysql query: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

func (b *MySQLBackend) Close() error { return b.db.Close() }

// mysqlArg converts a fields.Value into whatever the mysql driver knows
// how to bind. MySQL has no native array type, so StringArray and
// ColorSet both flatten to their wire-string form (the field registry's
// Storage kind already determines how each column compares against it).
func mysqlArg(v fields.Value) any {
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
