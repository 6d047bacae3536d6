package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"  // registers the "postgres" driver
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/rshade/reviewlens/internal/table"
)

const (
	driverSQLite   = "sqlite"
	driverPostgres = "postgres"

	// maxParams stays below SQLite's default host parameter limit.
	maxParams = 30_000
)

// SQLExporter inserts the table into a database table, creating it when
// absent. Every column is TEXT; the whole export runs in one transaction.
type SQLExporter struct {
	Driver string
	DSN    string
	Table  string
}

// Export implements Exporter.
func (e *SQLExporter) Export(ctx context.Context, t *table.Table) (err error) {
	db, err := sql.Open(e.Driver, e.DSN)
	if err != nil {
		return fmt.Errorf("opening %s database: %w", e.Driver, err)
	}
	defer func() {
		err = errors.Join(err, db.Close())
	}()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, createTableSQL(e.Table, t.Columns)); err != nil {
		return fmt.Errorf("creating table %s: %w", e.Table, err)
	}

	if err = e.insertRows(ctx, tx, t); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

func (e *SQLExporter) insertRows(ctx context.Context, tx *sql.Tx, t *table.Table) error {
	if len(t.Columns) == 0 || len(t.Rows) == 0 {
		return nil
	}

	columns := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		columns[i] = quoteIdent(c)
	}

	var placeholders sq.PlaceholderFormat = sq.Question
	if e.Driver == driverPostgres {
		placeholders = sq.Dollar
	}

	rowsPerStmt := max(1, maxParams/len(columns))
	for start := 0; start < len(t.Rows); start += rowsPerStmt {
		end := min(start+rowsPerStmt, len(t.Rows))

		ins := sq.Insert(quoteIdent(e.Table)).Columns(columns...).PlaceholderFormat(placeholders)
		for _, row := range t.Rows[start:end] {
			values := make([]any, len(columns))
			for j := range values {
				values[j] = cellValue(row.Get(j))
			}
			ins = ins.Values(values...)
		}

		if _, err := ins.RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("inserting rows %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

// createTableSQL builds the DDL for an all-TEXT table.
func createTableSQL(name string, columns []string) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = quoteIdent(c) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
}

// quoteIdent double-quotes an SQL identifier. Both SQLite and Postgres accept
// this form, which keeps dotted names such as reviews.text intact.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
