// Package store turns a compiled plan.Plan into a concrete SQL statement
// against one of the four backends the compiler's field registry targets
// (spec.md §6.2), the way database/{mysql,postgres,mssql,sqlite3} isolate
// one dialect's quoting and placeholder rules per package.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mtgsearch/mtgsearch/plan"
	"github.com/mtgsearch/mtgsearch/util"
)

// Row is a single result row, column name to driver-decoded value.
type Row map[string]any

// Columns returns r's keys in sorted order, for callers that print or
// compare rows and need a deterministic column order rather than Go's
// randomized map iteration.
func (r Row) Columns() []string {
	cols := make([]string, 0, len(r))
	for c := range util.CanonicalMapIter(r) {
		cols = append(cols, c)
	}
	return cols
}

// Backend executes a compiled Plan against a live SQL database. Each
// dialect's file in this package is a thin database/sql wrapper; none of
// them know about the DSL, only about rendering a Plan.
type Backend interface {
	Execute(ctx context.Context, p *plan.Plan, table string) ([]Row, error)
	Close() error
}

// PlaceholderStyle selects how a dialect spells a positional parameter.
type PlaceholderStyle int

const (
	PlaceholderQuestion PlaceholderStyle = iota // MySQL, SQLite: ?
	PlaceholderDollar                           // Postgres: $N
	PlaceholderAtP                              // MSSQL: @pN
)

// paramPlaceholder is a named :pN token, matched whole so that :p1 never
// matches as a prefix of :p10, :p11, ...
var paramPlaceholder = regexp.MustCompile(`:p(\d+)`)

// BuildQuery rewrites the compiler's :pN-named placeholders (left to
// right, matching compiler/compiler.go's stable counter) into style's
// native placeholder syntax and appends ORDER BY/LIMIT. Region ordering
// mirrors database/mysql/database.go and database/postgres/database.go's
// convention of keeping all dialect-specific rendering in one file.
func BuildQuery(p *plan.Plan, table string, style PlaceholderStyle) (string, []plan.Param) {
	predicate := paramPlaceholder.ReplaceAllStringFunc(p.PredicateSQL, func(tok string) string {
		n, err := strconv.Atoi(tok[2:])
		if err != nil {
			return tok
		}
		switch style {
		case PlaceholderDollar:
			return fmt.Sprintf("$%d", n+1)
		case PlaceholderAtP:
			return fmt.Sprintf("@p%d", n+1)
		default:
			return "?"
		}
	})

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT * FROM %s WHERE %s", table, predicate)
	if len(p.OrderBy) > 0 {
		b.WriteString(" ORDER BY ")
		terms := util.TransformSlice(p.OrderBy, func(t plan.OrderTerm) string {
			nulls := ""
			if t.NullsLast {
				nulls = " NULLS LAST"
			}
			return fmt.Sprintf("%s %s%s", t.Column, strings.ToUpper(t.Direction), nulls)
		})
		b.WriteString(strings.Join(terms, ", "))
	}
	if p.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", p.Limit)
	}
	return b.String(), p.Parameters
}

// scanRows decodes a *sql.Rows into Row values generically, without
// requiring callers to know the result schema ahead of time.
func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
