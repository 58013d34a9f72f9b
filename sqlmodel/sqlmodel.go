// Package sqlmodel derives parameter declarations from SQLite tables.
package sqlmodel

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	acceptparams "github.com/nateware/accept-params"
)

// Open opens a SQLite database file.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// Table is an acceptparams.ColumnSource reading column metadata with
// PRAGMA table_info.
type Table struct {
	db   *sql.DB
	name string
	ctx  context.Context
}

// NewTable returns the column source for table name.
func NewTable(db *sql.DB, name string) *Table {
	return &Table{db: db, name: name, ctx: context.Background()}
}

// WithContext returns a copy of t whose queries use ctx.
func (t *Table) WithContext(ctx context.Context) *Table {
	c := *t
	c.ctx = ctx
	return &c
}

// Columns lists the table's columns in declaration order.
func (t *Table) Columns() ([]acceptparams.Column, error) {
	rows, err := t.db.QueryContext(t.ctx, "PRAGMA table_info("+quoteIdent(t.name)+")")
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", t.name, err)
	}
	defer rows.Close()

	var cols []acceptparams.Column
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		tag, length := TypeTag(typ)
		cols = append(cols, acceptparams.Column{
			Name:     name,
			Type:     tag,
			Nullable: notNull == 0,
			// an INTEGER PRIMARY KEY is assigned by the store
			HasDefault: dflt.Valid || (pk > 0 && tag == "integer"),
			Length:     length,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("table info %s: %w", t.name, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s: not found", t.name)
	}
	return cols, nil
}

var lengthRe = regexp.MustCompile(`\(\s*(\d+)\s*\)`)

// TypeTag maps a declared SQLite column type to a type tag, following
// SQLite's affinity rules with a few refinements. The second result is
// the declared length, e.g. 32 for VARCHAR(32).
func TypeTag(declared string) (string, int) {
	t := strings.ToUpper(declared)
	length := 0
	if m := lengthRe.FindStringSubmatch(t); m != nil {
		length, _ = strconv.Atoi(m[1])
	}
	switch {
	case strings.Contains(t, "BOOL"):
		return "boolean", 0
	case strings.Contains(t, "UUID"):
		return "uuid", 0
	case strings.Contains(t, "DATE"), strings.Contains(t, "TIME"):
		return "datetime", 0
	case strings.Contains(t, "INT"):
		return "integer", 0
	case strings.Contains(t, "TEXT"), strings.Contains(t, "CLOB"):
		return "text", length
	case strings.Contains(t, "CHAR"):
		return "string", length
	case t == "", strings.Contains(t, "BLOB"):
		return "binary", 0
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"):
		return "float", 0
	default:
		// NUMERIC affinity
		return "decimal", 0
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
