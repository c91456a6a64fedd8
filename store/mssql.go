package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"

	"github.com/mtgsearch/mtgsearch/fields"
	"github.com/mtgsearch/mtgsearch/plan"
)

// MSSQLBackend renders and executes a Plan against SQL Server.
type MSSQLBackend struct {
	db *sql.DB
}

func NewMSSQLBackend(dsn string) (*MSSQLBackend, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mssql: %w", err)
	}
	return &MSSQLBackend{db: db}, nil
}

func (b *MSSQLBackend) Execute(ctx context.Context, p *plan.Plan, table string) ([]Row, error) {
	query, params := BuildQuery(p, table, PlaceholderAtP)
	args := make([]any, len(params))
	for i, param := range params {
		args[i] = mssqlArg(param.Value)
	}
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("mssql query: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

func (b *MSSQLBackend) Close() error { return b.db.Close() }

func mssqlArg(v fields.Value) any {
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
